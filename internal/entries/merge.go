package entries

import "github.com/jonathan/cv-formatter/internal/types"

// MergeExperience concatenates entries found above the first header with
// those found in the section, keeping the first of each (title, organization,
// dates) identity. Blank and placeholder entries are dropped.
func MergeExperience(preHeader, inSection []types.ExperienceEntry) []types.ExperienceEntry {
	out := make([]types.ExperienceEntry, 0, len(preHeader)+len(inSection))
	seen := make(map[types.EntryKey]bool)
	for _, group := range [][]types.ExperienceEntry{preHeader, inSection} {
		for _, e := range group {
			key := e.Key()
			if !key.Keepable() || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, e)
		}
	}
	return out
}

// MergeEducation is MergeExperience for education entries
func MergeEducation(preHeader, inSection []types.EducationEntry) []types.EducationEntry {
	out := make([]types.EducationEntry, 0, len(preHeader)+len(inSection))
	seen := make(map[types.EntryKey]bool)
	for _, group := range [][]types.EducationEntry{preHeader, inSection} {
		for _, e := range group {
			key := e.Key()
			if !key.Keepable() || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, e)
		}
	}
	return out
}
