// Package tools binds every data source to a named eino tool with a fixed
// JSON argument schema. Handlers convert data failures into observation
// text instead of returning errors, so the calling model can adapt rather
// than abort the run.
package tools

import "fmt"

// observe returns the report, or the error rendered as observation text.
func observe(report string, err error) string {
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	return report
}
