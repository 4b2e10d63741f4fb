// Package region maps human-readable region labels to AWS region codes.
package region

// AllRegions is the discovery selector that expands to every known region.
const AllRegions = "All Regions"

type mapping struct {
	label string
	code  string
}

// table is ordered; Labels and Codes preserve this order.
var table = []mapping{
	{"Paris", "eu-west-3"},
	{"Frankfurt", "eu-central-1"},
	{"Ireland", "eu-west-1"},
	{"London", "eu-west-2"},
	{"N. Virginia", "us-east-1"},
	{"Oregon", "us-west-2"},
}

// Resolve returns the region code for a known label. Unknown labels, including
// labels that are already region codes, are returned unchanged.
func Resolve(label string) string {
	for _, m := range table {
		if m.label == label {
			return m.code
		}
	}
	return label
}

// Label returns the label for a known region code, or code itself.
func Label(code string) string {
	for _, m := range table {
		if m.code == code {
			return m.label
		}
	}
	return code
}

// Labels returns the known labels in table order.
func Labels() []string {
	out := make([]string, len(table))
	for i, m := range table {
		out[i] = m.label
	}
	return out
}

// Codes returns the known region codes in table order.
func Codes() []string {
	out := make([]string, len(table))
	for i, m := range table {
		out[i] = m.code
	}
	return out
}

// Expand turns a discovery selector into region codes. AllRegions expands to
// Codes(); anything else resolves to a single code.
func Expand(selector string) []string {
	if selector == "" || selector == AllRegions {
		return Codes()
	}
	return []string{Resolve(selector)}
}
