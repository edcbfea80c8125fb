package review

import "github.com/reviewbot/reviewbot/github"

// CommentPlan is the result of placing findings onto a diff: inline
// candidates for findings that resolved to a position, and one aggregated
// fallback body for those that did not. FallbackBody is empty when every
// finding resolved.
type CommentPlan struct {
	Inline       []InlineComment
	FallbackBody string
}

// PlanComments maps findings onto the pull request's diff. A finding lands
// inline when its file is among the changed files and its line resolves to a
// diff position within snapRadius; anything else (unknown file, missing
// patch, missing line, no nearby added line) is routed to the fallback body.
// Pure transformation: no I/O, no shared state, inputs are not mutated.
func PlanComments(files []github.PullRequestFile, findings []Finding, snapRadius int) *CommentPlan {
	maps := BuildPositionMaps(files)

	changedPaths := make(map[string]bool, len(files))
	for _, f := range files {
		changedPaths[f.Filename] = true
	}

	plan := &CommentPlan{}
	var unresolved []Finding

	for _, f := range findings {
		if changedPaths[f.File] {
			if pos, ok := FindPosition(maps, f.File, f.Line, snapRadius); ok {
				plan.Inline = append(plan.Inline, InlineComment{
					Path:     f.File,
					Position: pos,
					Body:     f.InlineBody(),
				})
				continue
			}
		}
		unresolved = append(unresolved, f)
	}

	plan.FallbackBody = BuildFallbackBody(unresolved)
	return plan
}
