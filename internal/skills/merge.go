package skills

import "strings"

// Normalize trims and lowercases every skill, dropping empties and repeats while
// keeping first-seen order.
func Normalize(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// Merge appends the extracted skills that are not already present and reports
// how many were added. The existing slice is not modified.
func Merge(existing, extracted []string) ([]string, int) {
	merged := make([]string, 0, len(existing)+len(extracted))
	seen := make(map[string]struct{}, len(existing)+len(extracted))
	for _, s := range existing {
		merged = append(merged, s)
		seen[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}

	added := 0
	for _, s := range Normalize(extracted) {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		merged = append(merged, s)
		added++
	}
	return merged, added
}
