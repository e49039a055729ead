package attribution

import "strings"

// splitRule separates a rule name into its semantic id and deployment
// suffix. ok is false when the rule carries no suffix marker or the suffix
// is empty.
func splitRule(ruleName, marker string) (semantic, suffix string, ok bool) {
	idx := strings.LastIndex(strings.ToLower(ruleName), marker)
	if idx < 0 {
		return ruleName, "", false
	}
	suffix = ruleName[idx+len(marker):]
	if suffix == "" {
		return ruleName, "", false
	}
	return ruleName[:idx], suffix, true
}

// packSuffix derives the deployment suffix from a pack name: the segment
// after its last dash.
func packSuffix(packName string) string {
	idx := strings.LastIndex(packName, "-")
	if idx < 0 || idx == len(packName)-1 {
		return ""
	}
	return strings.ToLower(packName[idx+1:])
}
