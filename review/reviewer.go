package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/reviewbot/reviewbot/anthropic"
	"github.com/reviewbot/reviewbot/config"
	"github.com/reviewbot/reviewbot/github"
	"github.com/reviewbot/reviewbot/storage"
	"golang.org/x/sync/errgroup"
)

// ErrSeverityThreshold is returned by the CLI path when the worst finding
// severity reaches the configured fail level.
var ErrSeverityThreshold = errors.New("findings at or above the configured fail level")

// maxEmptyResponseAttempts bounds how often an empty model response is
// retried before the run is abandoned.
const maxEmptyResponseAttempts = 3

// Reviewer orchestrates a review run: fetch the PR, ask the model for
// findings, place them on the diff, and post the resulting comments.
type Reviewer struct {
	githubClient *github.Client
	claude       *anthropic.Client
	store        storage.Storage
	cfg          *config.Config
	logger       *slog.Logger
}

// NewReviewer creates a new Reviewer instance. store may be nil to disable
// run-history persistence.
func NewReviewer(githubClient *github.Client, claude *anthropic.Client, store storage.Storage, cfg *config.Config, logger *slog.Logger) *Reviewer {
	return &Reviewer{
		githubClient: githubClient,
		claude:       claude,
		store:        store,
		cfg:          cfg,
		logger:       logger,
	}
}

// ReviewInput identifies the pull request to review.
type ReviewInput struct {
	Owner      string
	Repo       string
	PRNumber   int
	UserPrompt string
}

// ReviewResult summarizes what a run produced and posted.
type ReviewResult struct {
	FindingCount   int
	InlinePosted   int
	FallbackPosted bool
	WorstSeverity  Severity
	Usage          *storage.TokenUsage
	FailLevelMet   bool
	Skipped        bool
}

// Review performs one review pass on a pull request.
func (r *Reviewer) Review(ctx context.Context, input *ReviewInput) (*ReviewResult, error) {
	r.logger.Info("starting review",
		"owner", input.Owner,
		"repo", input.Repo,
		"pr", input.PRNumber,
	)

	pr, err := r.githubClient.GetPullRequest(ctx, input.Owner, input.Repo, input.PRNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pull request: %w", err)
	}

	if pr.Draft {
		r.logger.Info("skipping draft pull request", "pr", input.PRNumber)
		return &ReviewResult{Skipped: true}, nil
	}

	r.logRunHistory(ctx, input)

	allFiles, err := r.githubClient.ListFiles(ctx, input.Owner, input.Repo, input.PRNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to list changed files: %w", err)
	}

	files := FilterFiles(allFiles, r.cfg.IncludeGlobs, r.cfg.ExcludeGlobs, r.cfg.MaxFiles)
	if len(files) == 0 {
		r.logger.Info("no reviewable files after filtering", "fetched", len(allFiles))
		if err := r.postReview(ctx, input, &github.ReviewRequest{
			Body:  BuildNoFilesBody(),
			Event: "COMMENT",
		}); err != nil {
			return nil, err
		}
		return &ReviewResult{}, nil
	}

	r.logger.Info("selected files for review",
		"selected", len(files),
		"fetched", len(allFiles),
		"max_files", r.cfg.MaxFiles,
	)

	rawText, usage, err := r.generateReview(ctx, pr, files, input.UserPrompt)
	if err != nil {
		return nil, err
	}

	findings, parsedOK := r.parseFindings(rawText)

	if len(findings) == 0 {
		body := BuildNoFindingsBody(rawText, parsedOK)
		if err := r.postReview(ctx, input, &github.ReviewRequest{Body: body, Event: "COMMENT"}); err != nil {
			return nil, err
		}
		r.logger.Info("posted no-findings review", "parsed", parsedOK)
		result := &ReviewResult{WorstSeverity: SeveritySuggestion, Usage: usage}
		r.storeRun(ctx, input, result)
		return result, nil
	}

	worst := WorstSeverity(findings)
	result := &ReviewResult{
		FindingCount:  len(findings),
		WorstSeverity: worst,
		Usage:         usage,
		FailLevelMet:  r.cfg.FailLevel != "" && worst.AtLeast(Severity(strings.ToUpper(r.cfg.FailLevel))),
	}

	if r.cfg.EnableInline {
		r.logger.Info("posting findings as inline comments", "findings", len(findings))
		if err := r.postInline(ctx, input, files, findings, result); err != nil {
			return nil, err
		}
	} else {
		r.logger.Info("posting findings as a summary review", "findings", len(findings))
		if err := r.postReview(ctx, input, &github.ReviewRequest{
			Body:  BuildSummaryBody(findings),
			Event: "COMMENT",
		}); err != nil {
			return nil, err
		}
	}

	r.storeRun(ctx, input, result)
	return result, nil
}

// generateReview builds the prompt and calls the model, retrying empty
// responses a bounded number of times on top of the transport-level retry.
func (r *Reviewer) generateReview(ctx context.Context, pr *github.PullRequest, files []github.PullRequestFile, userPrompt string) (string, *storage.TokenUsage, error) {
	prompt := BuildPrompt(files, userPrompt, r.cfg.MaxDiffChars, r.cfg.Style)

	system := r.cfg.SystemPrompt
	if system == "" {
		system = DefaultSystemPrompt
	}

	model := r.cfg.Model
	if model == "" {
		model = anthropic.DefaultModel
	}

	var usage *storage.TokenUsage
	for attempt := 1; attempt <= maxEmptyResponseAttempts; attempt++ {
		resp, err := retryWithBackoff(ctx, r.logger, "generateReview", func() (*anthropic.Response, error) {
			return r.claude.Complete(ctx, model, system, prompt, r.cfg.MaxTokens)
		})
		if err != nil {
			return "", nil, fmt.Errorf("failed to get model review: %w", err)
		}
		usage = resp.Usage
		if strings.TrimSpace(resp.Text) != "" {
			return resp.Text, usage, nil
		}
		r.logger.Warn("model response was empty",
			"attempt", attempt,
			"max_attempts", maxEmptyResponseAttempts,
			"pr_title", pr.Title,
		)
	}

	return "", usage, fmt.Errorf("model responses were empty after %d attempts", maxEmptyResponseAttempts)
}

// parseFindings extracts and decodes the model's findings. Parse failures
// degrade to zero findings so the run posts a fallback review instead of
// aborting.
func (r *Reviewer) parseFindings(rawText string) ([]Finding, bool) {
	block := ExtractJSONBlock(rawText)
	if block == "" {
		r.logger.Warn("no JSON block in model output", "preview", truncateString(rawText, 300))
		return nil, false
	}

	findings, err := ParseFindings(block, r.cfg.MaxFindings)
	if err != nil {
		r.logger.Warn("failed to parse findings JSON", "error", err)
		return nil, false
	}

	r.logger.Info("parsed findings", "count", len(findings))
	return findings, true
}

// postInline places findings on the diff, drops candidates already posted on
// a previous run, and submits the survivors in batches. Dedup runs once over
// the full candidate set before the first batch is posted.
func (r *Reviewer) postInline(ctx context.Context, input *ReviewInput, files []github.PullRequestFile, findings []Finding, result *ReviewResult) error {
	plan := PlanComments(files, findings, r.cfg.SnapRadius)
	r.logger.Info("planned comments",
		"inline", len(plan.Inline),
		"fallback", plan.FallbackBody != "",
	)

	existing, reviewBodies, err := r.fetchExistingState(ctx, input)
	if err != nil {
		return err
	}

	var fallbacks []string
	if plan.FallbackBody != "" {
		fallbacks = []string{plan.FallbackBody}
	}
	inline, fallbacks := FilterExisting(existing, reviewBodies, plan.Inline, fallbacks)

	skippedInline := len(plan.Inline) - len(inline)
	if skippedInline > 0 {
		r.logger.Info("skipped duplicate inline comments", "count", skippedInline)
	}

	batchSize := r.cfg.BatchSize
	for start := 0; start < len(inline); start += batchSize {
		end := start + batchSize
		if end > len(inline) {
			end = len(inline)
		}
		batch := make([]github.DraftComment, 0, end-start)
		for _, c := range inline[start:end] {
			batch = append(batch, github.DraftComment{
				Path:     c.Path,
				Position: c.Position,
				Body:     c.Body,
			})
		}
		if err := r.postReview(ctx, input, &github.ReviewRequest{
			Body:     "",
			Event:    "COMMENT",
			Comments: batch,
		}); err != nil {
			return err
		}
	}
	result.InlinePosted = len(inline)

	for _, body := range fallbacks {
		if err := r.postReview(ctx, input, &github.ReviewRequest{Body: body, Event: "COMMENT"}); err != nil {
			return err
		}
		result.FallbackPosted = true
	}

	return nil
}

// fetchExistingState loads the dedup oracle: prior inline comments and
// review bodies. The two list calls are independent, so they run
// concurrently.
func (r *Reviewer) fetchExistingState(ctx context.Context, input *ReviewInput) ([]ExistingComment, []string, error) {
	var comments []github.ReviewComment
	var reviews []github.Review

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		comments, err = r.githubClient.ListReviewComments(gctx, input.Owner, input.Repo, input.PRNumber)
		if err != nil {
			return fmt.Errorf("failed to fetch existing comments: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		reviews, err = r.githubClient.ListReviews(gctx, input.Owner, input.Repo, input.PRNumber)
		if err != nil {
			return fmt.Errorf("failed to fetch existing reviews: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	existing := make([]ExistingComment, len(comments))
	for i, c := range comments {
		existing[i] = ExistingComment{
			Path:     c.Path,
			Position: c.Position,
			Line:     c.Line,
			Body:     c.Body,
		}
	}

	bodies := make([]string, 0, len(reviews))
	for _, rev := range reviews {
		if strings.TrimSpace(rev.Body) != "" {
			bodies = append(bodies, rev.Body)
		}
	}

	return existing, bodies, nil
}

// postReview submits a review with retry on transient failures.
func (r *Reviewer) postReview(ctx context.Context, input *ReviewInput, req *github.ReviewRequest) error {
	_, err := retryWithBackoff(ctx, r.logger, "createReview", func() (*github.Review, error) {
		return r.githubClient.CreateReview(ctx, input.Owner, input.Repo, input.PRNumber, req)
	})
	if err != nil {
		return fmt.Errorf("failed to post review: %w", err)
	}
	return nil
}

// logRunHistory logs how often this pull request has been reviewed before.
// History failures are logged, never surfaced.
func (r *Reviewer) logRunHistory(ctx context.Context, input *ReviewInput) {
	if r.store == nil {
		return
	}

	runs, err := r.store.ListRunsForPR(ctx, input.Owner, input.Repo, input.PRNumber)
	if err != nil {
		r.logger.Warn("failed to load run history", "error", err)
		return
	}
	if len(runs) > 0 {
		last := runs[len(runs)-1]
		r.logger.Info("pull request was reviewed before",
			"runs", len(runs),
			"last_worst_severity", last.WorstSeverity,
		)
	}
}

// storeRun records the run outcome. Storage failures are logged, never
// surfaced; persistence must not fail a posted review.
func (r *Reviewer) storeRun(ctx context.Context, input *ReviewInput, result *ReviewResult) {
	if r.store == nil {
		return
	}

	run := &storage.RunRecord{
		Owner:          input.Owner,
		Repo:           input.Repo,
		PRNumber:       input.PRNumber,
		Model:          r.cfg.Model,
		FindingCount:   result.FindingCount,
		InlinePosted:   result.InlinePosted,
		FallbackPosted: result.FallbackPosted,
		WorstSeverity:  string(result.WorstSeverity),
		Usage:          result.Usage,
	}
	if err := r.store.StoreRun(ctx, run); err != nil {
		r.logger.Error("failed to store run record", "error", err)
	}
}

// truncateString truncates a string to at most maxLen bytes and adds "..."
// if truncated, never splitting a multi-byte character.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return trimToRuneBoundary(s, maxLen) + "..."
}
