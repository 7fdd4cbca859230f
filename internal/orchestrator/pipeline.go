package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/brandbot/internal/briefs"
	"github.com/jonathan/brandbot/internal/generation"
	"github.com/jonathan/brandbot/internal/types"
)

// stageResult is what a successful stage contributes to the brief.
type stageResult struct {
	fields  map[string]any // generatedAssets fields owned by the stage
	message string
	warning string
}

type stageCall func(ctx context.Context, brief *types.BrandBrief) (*stageResult, error)

func (o *Orchestrator) execute(r *run) {
	defer close(r.exited)

	steps := []func(*run) bool{
		o.nameStage,
		o.taglineStage,
		o.identityStage,
		o.logoStage,
	}
	for _, step := range steps {
		if !o.waitIfPaused(r) {
			return
		}
		if !step(r) {
			return
		}
	}
	if !o.waitIfPaused(r) {
		return
	}
	o.complete(r)
}

// waitIfPaused blocks while the run is paused. It returns false once r is no
// longer the active run.
func (o *Orchestrator) waitIfPaused(r *run) bool {
	for {
		o.mu.Lock()
		if !o.isActive(r) {
			o.mu.Unlock()
			return false
		}
		if o.status != StatusPaused {
			o.mu.Unlock()
			return true
		}
		ch := r.resumed
		o.mu.Unlock()

		select {
		case <-ch:
		case <-r.ctx.Done():
		}
	}
}

func (o *Orchestrator) nameStage(r *run) bool {
	o.mu.Lock()
	if !o.isActive(r) {
		o.mu.Unlock()
		return false
	}
	if name := strings.TrimSpace(o.brief.BasicInfo.BusinessName); name != "" {
		o.stage = StageName
		o.progress.SetStage(StageName, 100)
		var events []Event
		o.appendLog(&events, fmt.Sprintf("Using existing name: %s", name), LogInfo, StageName.Service())
		events = append(events, o.progressEvent(nil))
		o.publishAndUnlock(events)
		return true
	}
	o.mu.Unlock()

	return o.runStage(r, StageName, "Generating brand names...", func(ctx context.Context, b *types.BrandBrief) (*stageResult, error) {
		out, err := o.svc.GenerateNames(ctx, generation.NamesInput{
			Industry:    b.BasicInfo.Industry,
			Description: b.BasicInfo.BusinessDescription,
			Keywords:    styleKeywords(b.VisualPreferences.StylePreferences),
		})
		if err != nil {
			return nil, err
		}
		if len(out.Names) == 0 {
			return nil, errors.New("no brand names were generated")
		}
		return &stageResult{
			fields: map[string]any{
				"names":         out.Names,
				"nameRationale": out.Rationale,
			},
			message: fmt.Sprintf("Generated %d name options", len(out.Names)),
		}, nil
	})
}

func (o *Orchestrator) taglineStage(r *run) bool {
	return o.runStage(r, StageTagline, "Writing taglines...", func(ctx context.Context, b *types.BrandBrief) (*stageResult, error) {
		name := b.ResolvedName()
		if name == "" {
			return nil, errors.New("no brand name available for taglines")
		}
		out, err := o.svc.GenerateTagline(ctx, generation.TaglineInput{
			BrandName: name,
			Industry:  b.BasicInfo.Industry,
			Vibe:      vibe(b.VisualPreferences.StylePreferences),
		})
		if err != nil {
			return nil, err
		}
		return &stageResult{
			fields:  map[string]any{"taglines": out.Taglines},
			message: fmt.Sprintf("Generated %d taglines", len(out.Taglines)),
		}, nil
	})
}

func (o *Orchestrator) identityStage(r *run) bool {
	return o.runStage(r, StageColorPalette, "Building brand identity and color palette...", func(ctx context.Context, b *types.BrandBrief) (*stageResult, error) {
		name := b.ResolvedName()
		if name == "" {
			return nil, errors.New("no brand name available for identity")
		}
		out, err := o.svc.GenerateIdentity(ctx, generation.IdentityInput{
			BrandName:   name,
			Industry:    b.BasicInfo.Industry,
			Description: b.BasicInfo.BusinessDescription,
		})
		if err != nil {
			return nil, err
		}
		return &stageResult{
			fields: map[string]any{
				"mission":     out.MissionStatement,
				"values":      out.BrandValues,
				"colors":      out.ColorPalette,
				"typography":  out.TypographyRecommendation,
				"visualStyle": out.VisualStyle,
			},
			message: fmt.Sprintf("Brand identity ready with %d colors", len(out.ColorPalette)),
		}, nil
	})
}

func (o *Orchestrator) logoStage(r *run) bool {
	return o.runStage(r, StageLogo, "Designing logo...", func(ctx context.Context, b *types.BrandBrief) (*stageResult, error) {
		name := b.ResolvedName()
		if name == "" {
			return nil, errors.New("no brand name available for logo")
		}
		out, err := o.svc.GenerateLogo(ctx, generation.LogoInput{
			BrandName:   name,
			Industry:    b.BasicInfo.Industry,
			Description: b.BasicInfo.BusinessDescription,
			Colors:      b.GeneratedAssets.Colors,
			Style:       b.GeneratedAssets.VisualStyle,
		})
		if err != nil {
			return nil, err
		}
		res := &stageResult{
			fields:  map[string]any{"logoUrl": out.ImageURL},
			message: "Logo created",
		}
		if out.ImageURL == "" {
			res.message = "Logo stage finished"
			res.warning = "The image model returned no logo; the brand kit has no logo"
		}
		return res, nil
	})
}

// runStage calls one generation step with a timeout and applies its result if
// r is still the active run when the call returns. A call that ignores its
// context is abandoned at the deadline; its late result is dropped.
func (o *Orchestrator) runStage(r *run, stage Stage, startMsg string, call stageCall) bool {
	o.mu.Lock()
	if !o.isActive(r) {
		o.mu.Unlock()
		return false
	}
	o.stage = stage
	brief := o.brief.Clone()
	var events []Event
	o.appendLog(&events, startMsg, LogInfo, stage.Service())
	o.publishAndUnlock(events)

	ctx, cancel := context.WithTimeout(r.ctx, o.stageTimeout)
	res, err := callStage(ctx, brief, call)
	timedOut := errors.Is(ctx.Err(), context.DeadlineExceeded)
	cancel()

	if err != nil {
		if timedOut {
			err = fmt.Errorf("timed out after %s: %w", o.stageTimeout, err)
		}
		o.fail(r, &StageError{Stage: stage, Cause: err})
		return false
	}
	return o.applyStage(r, stage, res)
}

type stageOutcome struct {
	res *stageResult
	err error
}

// callStage runs call and returns when it finishes or ctx is done, whichever
// comes first.
func callStage(ctx context.Context, brief *types.BrandBrief, call stageCall) (*stageResult, error) {
	done := make(chan stageOutcome, 1)
	go func() {
		res, err := call(ctx, brief)
		done <- stageOutcome{res: res, err: err}
	}()

	select {
	case out := <-done:
		return out.res, out.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// applyStage merges res into the brief, persists it and reports progress. The
// store is written without holding o.mu, so the run is checked again afterwards.
func (o *Orchestrator) applyStage(r *run, stage Stage, res *stageResult) bool {
	o.mu.Lock()
	if !o.isActive(r) {
		o.mu.Unlock()
		log.Printf("[orchestrator] run %s: discarding late %s result", r.id, stage)
		return false
	}
	merged := o.brief.Clone()
	if err := briefs.MergeSection(merged, types.SectionGeneratedAssets, res.fields); err != nil {
		o.mu.Unlock()
		o.fail(r, &StageError{Stage: stage, Cause: err})
		return false
	}
	o.mu.Unlock()

	persistErr := o.persist(r, merged.ID, stage, res.fields)

	o.mu.Lock()
	if !o.isActive(r) {
		o.mu.Unlock()
		log.Printf("[orchestrator] run %s: discarding %s result after cancel", r.id, stage)
		return false
	}
	o.brief = merged
	if stage == StageLogo {
		o.logoMissing = o.brief.GeneratedAssets.LogoURL == ""
	}

	var events []Event
	if persistErr != nil {
		o.appendLog(&events, fmt.Sprintf("Could not save %s results: %v", stage, persistErr), LogWarning, stage.Service())
	}
	o.progress.SetStage(stage, 100)
	assets := o.brief.GeneratedAssets.Clone()
	events = append(events, o.progressEvent(&assets))
	o.appendLog(&events, res.message, LogSuccess, stage.Service())
	if res.warning != "" {
		o.appendLog(&events, res.warning, LogWarning, stage.Service())
	}
	o.publishAndUnlock(events)
	return true
}

// persist writes the stage's fields through the store. The write is bound to
// the run context, so Cancel aborts it.
func (o *Orchestrator) persist(r *run, briefID uuid.UUID, stage Stage, fields map[string]any) error {
	if o.store == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(r.ctx, persistTimeout)
	defer cancel()
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := o.store.UpdateBriefSection(ctx, briefID, types.SectionGeneratedAssets, fields); err != nil {
		log.Printf("[orchestrator] failed to persist %s assets for brief %s: %v", stage, briefID, err)
		return err
	}
	return nil
}

func (o *Orchestrator) fail(r *run, err error) {
	o.mu.Lock()
	if !o.isActive(r) {
		o.mu.Unlock()
		log.Printf("[orchestrator] run %s: ignoring error from inactive run: %v", r.id, err)
		return
	}
	if terr := o.transition(StatusFailed); terr != nil {
		o.mu.Unlock()
		log.Printf("[orchestrator] run %s: %v", r.id, terr)
		return
	}
	o.lastErr = err.Error()
	o.finishRun(r)
	r.cancel()

	var events []Event
	events = append(events, o.statusEvent())
	o.appendLog(&events, fmt.Sprintf("Generation failed: %v", err), LogError, ServiceSystem)
	log.Printf("[orchestrator] run %s failed: %v", r.id, err)
	o.publishAndUnlock(events)
}

func (o *Orchestrator) complete(r *run) {
	o.mu.Lock()
	if !o.isActive(r) {
		o.mu.Unlock()
		return
	}
	if err := o.transition(StatusCompleted); err != nil {
		o.mu.Unlock()
		log.Printf("[orchestrator] run %s: %v", r.id, err)
		return
	}
	o.stage = ""
	o.finishRun(r)
	r.cancel()

	var events []Event
	events = append(events, o.statusEvent())
	o.appendLog(&events, fmt.Sprintf("Brand kit for %s is ready", o.brief.ResolvedName()), LogSuccess, ServiceSystem)
	log.Printf("[orchestrator] run %s completed in %s", r.id, o.finishedAt.Sub(o.startedAt).Round(time.Millisecond))

	time.AfterFunc(o.navigateDelay, func() { o.navigate(r) })
	o.publishAndUnlock(events)
}

// navigate fires the post-completion event unless another run has started since.
func (o *Orchestrator) navigate(r *run) {
	o.mu.Lock()
	if o.current != r || o.status != StatusCompleted {
		o.mu.Unlock()
		return
	}
	o.publishAndUnlock([]Event{{Kind: EventNavigate, RunID: r.id, Status: o.status}})
}

// styleKeywords turns the style sliders into name-generation keywords.
func styleKeywords(p types.StylePreferences) []string {
	var out []string
	for _, v := range []string{p.ModernClassic, p.BoldSubtle, p.PlayfulProfessional} {
		if v != "" && v != "balanced" {
			out = append(out, v)
		}
	}
	return out
}

// vibe summarizes the style sliders for tagline generation.
func vibe(p types.StylePreferences) string {
	if kw := styleKeywords(p); len(kw) > 0 {
		return strings.Join(kw, ", ")
	}
	return "balanced"
}
