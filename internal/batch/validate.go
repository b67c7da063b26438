package batch

import (
	"fmt"
	"strings"
)

// maxRecordedFaults bounds the structural pass error message: after this
// many faults the remaining operations are not itemized.
const maxRecordedFaults = 10

// validate runs the structural and semantic passes. A structural failure
// is returned immediately without reaching the semantic pass; no handler
// is ever invoked for an invalid batch.
func (e *Executor) validate(ops []Operation) *ValidationError {
	if err := e.validateStructure(ops); err != nil {
		return err
	}
	return e.validateRequirements(ops)
}

// validateStructure checks every operation against the handler registry
// and requires a non-nil argument map. Faults are collected, not
// short-circuited, so one failure message names every offender.
func (e *Executor) validateStructure(ops []Operation) *ValidationError {
	var (
		unknownIdx   []int
		badArgsIdx   []int
		unknownTools []string
		seen         = map[string]struct{}{}
		details      []string
		recorded     int
		truncated    bool
	)

	for i, op := range ops {
		if recorded >= maxRecordedFaults {
			truncated = true
			break
		}
		if !e.Registry.Has(op.Tool) {
			unknownIdx = append(unknownIdx, i)
			if _, ok := seen[op.Tool]; !ok {
				seen[op.Tool] = struct{}{}
				unknownTools = append(unknownTools, op.Tool)
			}
			details = append(details, fmt.Sprintf("operations[%d]: unknown tool %q", i, op.Tool))
			recorded++
			continue
		}
		if op.Arguments == nil {
			badArgsIdx = append(badArgsIdx, i)
			details = append(details, fmt.Sprintf("operations[%d]: arguments must be an object", i))
			recorded++
		}
	}

	if len(unknownIdx) == 0 && len(badArgsIdx) == 0 {
		return nil
	}

	var parts []string
	if len(unknownIdx) > 0 {
		parts = append(parts, fmt.Sprintf(
			"operations %s reference unknown tools: %s",
			formatIndexes(unknownIdx), strings.Join(unknownTools, ", ")))
	}
	if len(badArgsIdx) > 0 {
		parts = append(parts, fmt.Sprintf(
			"operations %s have missing or malformed arguments", formatIndexes(badArgsIdx)))
	}
	if truncated {
		parts = append(parts, "further faults omitted")
	}

	message := fmt.Sprintf("batch validation failed: %s; available tools: %s",
		strings.Join(parts, "; "), strings.Join(e.Registry.Names(), ", "))

	return &ValidationError{Message: message, Details: details}
}

// validateRequirements verifies the per-tool required-argument table.
// Failures are grouped per tool rather than reported per operation.
func (e *Executor) validateRequirements(ops []Operation) *ValidationError {
	type fault struct {
		required []string
		count    int
	}

	faults := map[string]*fault{}
	var order []string

	for _, op := range ops {
		required := e.Requirements[op.Tool]
		if len(required) == 0 {
			continue
		}
		missing := false
		for _, key := range required {
			if _, ok := op.Arguments[key]; !ok {
				missing = true
				break
			}
		}
		if !missing {
			continue
		}
		f := faults[op.Tool]
		if f == nil {
			f = &fault{required: required}
			faults[op.Tool] = f
			order = append(order, op.Tool)
		}
		f.count++
	}

	if len(faults) == 0 {
		return nil
	}

	var parts []string
	var details []string
	for _, tool := range order {
		f := faults[tool]
		line := fmt.Sprintf("tool %s needs %s (%d operations)",
			tool, strings.Join(f.required, ", "), f.count)
		parts = append(parts, line)
		details = append(details, line)
	}

	return &ValidationError{
		Message: "batch validation failed: " + strings.Join(parts, "; "),
		Details: details,
	}
}

func formatIndexes(indexes []int) string {
	parts := make([]string, len(indexes))
	for i, idx := range indexes {
		parts[i] = fmt.Sprintf("%d", idx)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
