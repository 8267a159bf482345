package pipeline

import "fmt"

// FieldDiff records one field where two task bodies disagree.
type FieldDiff struct {
	Field string `json:"field"`
	A     string `json:"a"`
	B     string `json:"b"`
}

// Diff compares two task bodies field by field and returns every
// difference. Two variants of the same task (for example a stable and a
// nightly toolchain build) are expected to diverge only in the task name
// and the steps that mention the toolchain channel.
func Diff(a, b Task) []FieldDiff {
	var diffs []FieldDiff

	if a.Name != b.Name {
		diffs = append(diffs, FieldDiff{Field: "name", A: a.Name, B: b.Name})
	}
	if a.Image != b.Image {
		diffs = append(diffs, FieldDiff{Field: "image", A: a.Image, B: b.Image})
	}
	diffs = append(diffs, diffSteps("setup", a.Setup, b.Setup)...)
	diffs = append(diffs, diffSteps("test", a.Test, b.Test)...)
	diffs = append(diffs, diffSteps("depends_on", a.DependsOn, b.DependsOn)...)

	return diffs
}

func diffSteps(field string, a, b []string) []FieldDiff {
	var diffs []FieldDiff
	if len(a) != len(b) {
		diffs = append(diffs, FieldDiff{
			Field: field + ".len",
			A:     fmt.Sprintf("%d", len(a)),
			B:     fmt.Sprintf("%d", len(b)),
		})
	}
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			diffs = append(diffs, FieldDiff{
				Field: fmt.Sprintf("%s[%d]", field, i),
				A:     a[i],
				B:     b[i],
			})
		}
	}
	return diffs
}
