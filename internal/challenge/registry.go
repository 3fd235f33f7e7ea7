// Package challenge holds the static catalogue of the lab's ten OWASP API
// Security Top 10 (2023) challenges.
//
// Each challenge couples one OWASP category to a unique flag string and to the
// endpoint that mints it. The registry is the single source of truth for flag
// strings: handlers reference the Flag* constants below, the seed writes the
// same rows into the challenges table, and nothing else in the codebase spells
// a flag out by hand.
package challenge

// Flag strings. Format: GTX{snake_case_lower_with_digits}. These must stay
// byte-identical to the seeded challenge rows or students' captures won't
// validate. FlagUnsafeConsume has no catalogue row; the partner-sync endpoint
// mints it directly.
const (
	FlagBOLAProfile    = "GTX{b0la_pr0f1l3_4cc3ss}"
	FlagBOLAOrders     = "GTX{0rd3r_l34k4g3_d3t3ct3d}"
	FlagBruteForce     = "GTX{br00t_f0rc3_succ3ss}"
	FlagMassAssignment = "GTX{m4ss_4ss1gnm3nt_pwn3d}"
	FlagPaginationDoS  = "GTX{p4g1n4t10n_l1m1t_byp4ss}"
	FlagAdminAccess    = "GTX{4dm1n_4cc3ss_gr4nt3d}"
	FlagTicketScalping = "GTX{t1ck3t_sc4lp1ng_d3t3ct3d}"
	FlagSSRF           = "GTX{ssrf_1nt3rn4l_4cc3ss}"
	FlagDebugEndpoint  = "GTX{d3bug_3ndp01nt_3xp0s3d}"
	FlagOldVersion     = "GTX{0ld_v3rs10n_vuln3r4bl3}"
	FlagUnsafeConsume  = "GTX{uns4f3_4p1_c0nsum3}"
)

// Challenge is one row of the catalogue.
type Challenge struct {
	ID          string
	Category    string
	Title       string
	Description string
	Difficulty  string // easy, medium, hard
	Flag        string
	Points      int
	Endpoint    string
	Hint1       string
	Hint2       string
	Hint3       string
	Solution    string
}

// registry is package-private; use All() to get a copy.
var registry = []Challenge{
	{
		ID:          "api1-bola-profile",
		Category:    "API1:2023 - Broken Object Level Authorization",
		Title:       "User Profile Access",
		Description: "Access other users' profiles by manipulating the user ID parameter",
		Difficulty:  "easy",
		Flag:        FlagBOLAProfile,
		Points:      100,
		Endpoint:    "GET /api/v1/users/:userId/profile",
		Hint1:       "Try changing the userId parameter in the URL",
		Hint2:       "The API doesn't check if you own the requested profile",
		Hint3:       "Use Burp Suite Intruder to enumerate user IDs",
		Solution:    "Send GET request to /api/v1/users/2/profile while authenticated as user 1",
	},
	{
		ID:          "api1-bola-orders",
		Category:    "API1:2023 - Broken Object Level Authorization",
		Title:       "Order Details Access",
		Description: "View other users' order details",
		Difficulty:  "easy",
		Flag:        FlagBOLAOrders,
		Points:      100,
		Endpoint:    "GET /api/v1/orders/:orderId",
		Hint1:       "Order IDs are sequential integers",
		Hint2:       "Try incrementing or decrementing the order ID",
		Hint3:       "No authorization check is performed",
		Solution:    "Access /api/v1/orders/1 while authenticated as a different user",
	},
	{
		ID:          "api2-broken-auth-bruteforce",
		Category:    "API2:2023 - Broken Authentication",
		Title:       "Brute Force Login",
		Description: "Exploit missing rate limiting on login endpoint",
		Difficulty:  "easy",
		Flag:        FlagBruteForce,
		Points:      150,
		Endpoint:    "POST /api/v1/auth/login",
		Hint1:       "There is no rate limiting on the login endpoint",
		Hint2:       "User \"weakpass\" has a common password",
		Hint3:       "Try passwords like: 123456, password, qwerty",
		Solution:    "Brute force login with username \"weakpass\" and password \"123456\"",
	},
	{
		ID:          "api3-mass-assignment",
		Category:    "API3:2023 - Broken Object Property Level Authorization",
		Title:       "Mass Assignment Privilege Escalation",
		Description: "Modify restricted fields through mass assignment",
		Difficulty:  "medium",
		Flag:        FlagMassAssignment,
		Points:      200,
		Endpoint:    "PUT /api/v1/users/profile",
		Hint1:       "The API accepts any field in the request body",
		Hint2:       "Try adding \"is_admin\": true to your profile update",
		Hint3:       "Check the response to see if the field was updated",
		Solution:    "Send PUT request with {\"is_admin\": true} in the body",
	},
	{
		ID:          "api4-pagination-dos",
		Category:    "API4:2023 - Unrestricted Resource Consumption",
		Title:       "Pagination Limit Bypass",
		Description: "Request excessive data through unlimited pagination",
		Difficulty:  "easy",
		Flag:        FlagPaginationDoS,
		Points:      100,
		Endpoint:    "GET /api/v1/products?limit=999999",
		Hint1:       "The limit parameter has no maximum value",
		Hint2:       "Try requesting a very large number of items",
		Hint3:       "Use limit=999999 or higher",
		Solution:    "GET /api/v1/products?limit=999999",
	},
	{
		ID:          "api5-admin-access",
		Category:    "API5:2023 - Broken Function Level Authorization",
		Title:       "Admin Panel Access",
		Description: "Access admin functions without proper authorization",
		Difficulty:  "easy",
		Flag:        FlagAdminAccess,
		Points:      150,
		Endpoint:    "GET /api/v1/admin/users",
		Hint1:       "Admin endpoints only check for authentication, not authorization",
		Hint2:       "Try accessing /api/v1/admin/users as a regular user",
		Hint3:       "You just need a valid JWT token",
		Solution:    "Access /api/v1/admin/users with any authenticated user token",
	},
	{
		ID:          "api6-ticket-scalping",
		Category:    "API6:2023 - Unrestricted Access to Sensitive Business Flows",
		Title:       "Ticket Scalping",
		Description: "Bypass ticket purchase limits through automation",
		Difficulty:  "medium",
		Flag:        FlagTicketScalping,
		Points:      200,
		Endpoint:    "POST /api/v1/tickets/purchase",
		Hint1:       "No CAPTCHA or bot detection is implemented",
		Hint2:       "No rate limiting on ticket purchases",
		Hint3:       "You can automate multiple purchases",
		Solution:    "Automate ticket purchases to buy more than the per-user limit",
	},
	{
		ID:          "api7-ssrf-avatar",
		Category:    "API7:2023 - Server-Side Request Forgery",
		Title:       "SSRF via Avatar Upload",
		Description: "Exploit SSRF vulnerability in avatar URL fetching",
		Difficulty:  "medium",
		Flag:        FlagSSRF,
		Points:      250,
		Endpoint:    "POST /api/v1/users/avatar",
		Hint1:       "The server fetches any URL you provide",
		Hint2:       "Try accessing internal URLs like http://localhost",
		Hint3:       "Cloud metadata: http://169.254.169.254/latest/meta-data/",
		Solution:    "POST with avatarUrl: \"http://localhost:3000/api/debug/config\"",
	},
	{
		ID:          "api8-debug-endpoint",
		Category:    "API8:2023 - Security Misconfiguration",
		Title:       "Debug Endpoint Exposure",
		Description: "Find and exploit exposed debug endpoints",
		Difficulty:  "easy",
		Flag:        FlagDebugEndpoint,
		Points:      100,
		Endpoint:    "GET /api/debug/config",
		Hint1:       "Debug endpoints are often left enabled in production",
		Hint2:       "Try common debug paths like /debug, /api/debug",
		Hint3:       "Look for /api/debug/config",
		Solution:    "Access /api/debug/config to get environment variables",
	},
	{
		ID:          "api9-old-version",
		Category:    "API9:2023 - Improper Inventory Management",
		Title:       "Old API Version Exploitation",
		Description: "Exploit vulnerabilities in deprecated API versions",
		Difficulty:  "easy",
		Flag:        FlagOldVersion,
		Points:      100,
		Endpoint:    "GET /api/v0/admin/users",
		Hint1:       "Old API versions may still be accessible",
		Hint2:       "Try /api/v0/ instead of /api/v1/",
		Hint3:       "v0 endpoints have no security controls at all",
		Solution:    "Access /api/v0/admin/users without any authentication",
	},
}

// All returns a copy of the catalogue, in seed order.
func All() []Challenge {
	out := make([]Challenge, len(registry))
	copy(out, registry)
	return out
}

// Attach inserts a "flag" field into body only when fired is true. Handlers
// pass the predicate result for their route; on the happy path the field is
// absent entirely, never null or empty.
func Attach(body map[string]any, flag string, fired bool) map[string]any {
	if fired {
		body["flag"] = flag
	}
	return body
}
