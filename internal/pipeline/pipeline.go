package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"rigconvert/internal/animation"
	"rigconvert/internal/asset"
	"rigconvert/internal/blendtree"
	"rigconvert/internal/controller"
	"rigconvert/internal/converr"
	"rigconvert/internal/logging"
	"rigconvert/internal/material"
	"rigconvert/internal/registry"
	"rigconvert/internal/rig"
	"rigconvert/internal/runctx"
)

// Orchestrator runs conversions against one store.
type Orchestrator struct {
	store     asset.Store
	opts      Options
	logger    *slog.Logger
	observer  Observer
	converter *material.Converter
}

// New builds an orchestrator. A nil observer discards progress events.
func New(store asset.Store, opts Options, logger *slog.Logger, observer Observer) *Orchestrator {
	return &Orchestrator{
		store:     store,
		opts:      opts,
		logger:    logging.NewComponentLogger(logger, "pipeline"),
		observer:  Observers(observer),
		converter: material.NewConverter(store, opts.Compose),
	}
}

// run carries per-run state. It is discarded when Convert returns.
type run struct {
	*Orchestrator
	id      string
	reg     *registry.Registry
	disc    *Discovery
	proxies animation.Denylist
	passed  []PassThrough
	logger  *slog.Logger
	started time.Time
}

// Convert converts the rig with id rigID and returns the converted rig. On
// failure every asset persisted by the run is deleted before the error is
// returned.
func (o *Orchestrator) Convert(ctx context.Context, rigID asset.ID) (result *Result, err error) {
	runID, ok := runctx.RunIDFromContext(ctx)
	if !ok {
		runID = uuid.NewString()
		ctx = runctx.WithRunID(ctx, runID)
	}
	r := &run{
		Orchestrator: o,
		id:           runID,
		reg:          registry.New(o.store, o.opts.OutputRoot, o.logger),
		proxies:      animation.NewDenylist(o.opts.ProxyClips...),
		started:      time.Now(),
	}
	r.logger = logging.WithContext(ctx, o.logger)

	if err := o.opts.Policy.Validate(); err != nil {
		return nil, converr.Wrap(converr.ErrConfiguration, "", "validate policy", "", err)
	}

	defer func() {
		if err == nil {
			return
		}
		logging.ErrorWithContext(r.logger, "conversion failed", "run_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, converr.Hint(err)),
		)
		if discardErr := r.reg.Discard(context.WithoutCancel(ctx)); discardErr != nil {
			err = errors.Join(err, fmt.Errorf("rollback: %w", discardErr))
		}
	}()

	r.logger.Info("conversion started",
		logging.String(logging.FieldEventType, "run_started"),
		logging.String("rig_id", string(rigID)),
		logging.String("output_root", o.opts.OutputRoot),
	)

	disc, err := Discover(runctx.WithStage(ctx, StageDiscover), o.store, rigID, o.opts)
	if err != nil {
		return nil, err
	}
	r.disc = disc

	stages := []struct {
		name string
		fn   func(context.Context) error
	}{
		{StageMaterials, r.convertMaterials},
		{StageClips, r.convertClips},
		{StageBlendTrees, r.convertTrees},
		{StageControllers, r.convertControllers},
	}
	for _, stage := range stages {
		stageCtx := runctx.WithStage(ctx, stage.name)
		stageStart := time.Now()
		r.logger.Debug("stage started", logging.String(logging.FieldStage, stage.name), logging.String(logging.FieldEventType, "stage_started"))
		if err := stage.fn(stageCtx); err != nil {
			return nil, err
		}
		r.logger.Info("stage completed",
			logging.String(logging.FieldStage, stage.name),
			logging.String(logging.FieldEventType, "stage_completed"),
			logging.Int("converted", r.reg.Counts()[stageKind(stage.name)]),
			logging.Duration("duration", time.Since(stageStart)),
		)
	}

	return r.buildRig(runctx.WithStage(ctx, StageRig))
}

func stageKind(stage string) asset.Kind {
	switch stage {
	case StageMaterials:
		return asset.KindMaterial
	case StageClips:
		return asset.KindClip
	case StageBlendTrees:
		return asset.KindBlendTree
	case StageControllers:
		return asset.KindController
	default:
		return asset.KindRig
	}
}

func (r *run) pass(stage string, total, index int, kind asset.Kind, meta asset.Meta, reason string) {
	r.passed = append(r.passed, PassThrough{Kind: kind, ID: meta.ID, Name: meta.Name, Reason: reason})
	r.logger.Debug("asset passed through",
		logging.Args(append(logging.DecisionAttrs("convert", "pass_through", reason),
			logging.String(logging.FieldStage, stage),
			logging.String(logging.FieldAssetID, string(meta.ID)),
		)...)...,
	)
	r.observer.Progress(Event{Stage: stage, Total: total, Index: index, AssetID: meta.ID, Name: meta.Name, Phase: PhasePassed})
}

func (r *run) start(stage string, total, index int, meta asset.Meta) {
	r.observer.Progress(Event{Stage: stage, Total: total, Index: index, AssetID: meta.ID, Name: meta.Name, Phase: PhaseStart})
}

func (r *run) converted(stage string, total, index int, meta asset.Meta, target asset.ID) {
	r.observer.Progress(Event{Stage: stage, Total: total, Index: index, AssetID: meta.ID, Name: meta.Name, Phase: PhaseConverted, Target: target})
}

func (r *run) failed(stage string, total, index int, meta asset.Meta, err error) error {
	r.observer.Progress(Event{Stage: stage, Total: total, Index: index, AssetID: meta.ID, Name: meta.Name, Phase: PhaseFailed, Err: err})
	return err
}

type materialJob struct {
	index  int
	source *asset.Material
	policy material.Policy
}

// convertMaterials computes conversions in parallel, then commits them in
// discovery order so naming and the reported failure are deterministic.
func (r *run) convertMaterials(ctx context.Context) error {
	mats := r.disc.Materials
	total := len(mats)

	var jobs []materialJob
	for i, m := range mats {
		policy := r.opts.Policy.For(m.ID)
		if policy.IsApproved(m.Shader) {
			continue
		}
		jobs = append(jobs, materialJob{index: i, source: m, policy: policy})
	}

	results := make([]*material.Result, len(jobs))
	errs := make([]error, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.workers())
	for i, job := range jobs {
		g.Go(func() error {
			res, err := r.converter.Convert(gctx, job.source, job.policy)
			results[i], errs[i] = res, err
			return err
		})
	}
	_ = g.Wait()
	failAt := firstFailure(ctx, errs)

	next := 0
	for i, m := range mats {
		if err := ctx.Err(); err != nil {
			return err
		}
		if next >= len(jobs) || jobs[next].index != i {
			r.pass(StageMaterials, total, i, asset.KindMaterial, m.Meta, fmt.Sprintf("shader %q already approved", m.Shader))
			continue
		}
		slot := next
		next++

		if errs[slot] != nil {
			// Slots cancelled after another material failed report that failure.
			if failAt >= 0 {
				slot = failAt
			}
			job := jobs[slot]
			r.start(StageMaterials, total, job.index, job.source.Meta)
			return r.failed(StageMaterials, total, job.index, job.source.Meta, converr.MaterialFailed(job.source, errs[slot]))
		}
		r.start(StageMaterials, total, i, m.Meta)
		target, err := r.commitMaterial(ctx, m, results[slot])
		if err != nil {
			return r.failed(StageMaterials, total, i, m.Meta, converr.MaterialFailed(m, err))
		}
		r.converted(StageMaterials, total, i, m.Meta, target)
	}
	return nil
}

// firstFailure returns the lowest slot whose error is not the group
// cancellation that followed another slot's failure, or -1.
func firstFailure(ctx context.Context, errs []error) int {
	for i, err := range errs {
		if err == nil {
			continue
		}
		if ctx.Err() == nil && errors.Is(err, context.Canceled) {
			continue
		}
		return i
	}
	return -1
}

func (r *run) commitMaterial(ctx context.Context, src *asset.Material, res *material.Result) (asset.ID, error) {
	switch {
	case res.Baked != nil:
		texID, err := r.reg.GetOrInsert(ctx, asset.KindTexture, src.Meta, func(context.Context) (asset.Asset, error) {
			return res.Baked, nil
		})
		if err != nil {
			return "", fmt.Errorf("bake texture: %w", err)
		}
		res.BindMainTexture(texID)
	case res.Resized != nil:
		texID, err := r.reg.GetOrInsert(ctx, asset.KindTexture, res.ResizedKey, func(context.Context) (asset.Asset, error) {
			return res.Resized, nil
		})
		if err != nil {
			return "", fmt.Errorf("resize texture: %w", err)
		}
		res.BindMainTexture(texID)
	}
	return r.reg.GetOrInsert(ctx, asset.KindMaterial, src.Meta, func(context.Context) (asset.Asset, error) {
		return res.Material, nil
	})
}

func (r *run) convertClips(ctx context.Context) error {
	materials := r.reg.Map(asset.KindMaterial)
	total := len(r.disc.Clips)
	for i, clip := range r.disc.Clips {
		if err := ctx.Err(); err != nil {
			return err
		}
		if r.proxies.Contains(clip.ID) {
			r.pass(StageClips, total, i, asset.KindClip, clip.Meta, "proxy animation")
			continue
		}
		out, changed, err := animation.Rewrite(clip, materials)
		if err != nil {
			r.start(StageClips, total, i, clip.Meta)
			return r.failed(StageClips, total, i, clip.Meta, converr.ClipFailed(clip, err))
		}
		if !changed {
			r.pass(StageClips, total, i, asset.KindClip, clip.Meta, "no converted material references")
			continue
		}
		r.start(StageClips, total, i, clip.Meta)
		target, err := r.reg.GetOrInsert(ctx, asset.KindClip, clip.Meta, func(context.Context) (asset.Asset, error) {
			return out, nil
		})
		if err != nil {
			return r.failed(StageClips, total, i, clip.Meta, converr.ClipFailed(clip, err))
		}
		r.converted(StageClips, total, i, clip.Meta, target)
	}
	return nil
}

func (r *run) convertTrees(ctx context.Context) error {
	clips := r.reg.Map(asset.KindClip)
	total := len(r.disc.TreeOrder)
	for i, id := range r.disc.TreeOrder {
		if err := ctx.Err(); err != nil {
			return err
		}
		tree := r.disc.Trees[id]
		// Re-read each time: trees converted earlier in this loop feed later ones.
		trees := r.reg.Map(asset.KindBlendTree)
		out, changed, err := blendtree.Rewrite(tree, clips, trees)
		if err != nil {
			r.start(StageBlendTrees, total, i, tree.Meta)
			return r.failed(StageBlendTrees, total, i, tree.Meta, converr.BlendTreeFailed(tree, err))
		}
		if !changed {
			r.pass(StageBlendTrees, total, i, asset.KindBlendTree, tree.Meta, "no converted motions")
			continue
		}
		r.start(StageBlendTrees, total, i, tree.Meta)
		target, err := r.reg.GetOrInsert(ctx, asset.KindBlendTree, tree.Meta, func(context.Context) (asset.Asset, error) {
			return out, nil
		})
		if err != nil {
			return r.failed(StageBlendTrees, total, i, tree.Meta, converr.BlendTreeFailed(tree, err))
		}
		r.converted(StageBlendTrees, total, i, tree.Meta, target)
	}
	return nil
}

func (r *run) convertControllers(ctx context.Context) error {
	motions := controller.Merge(r.reg.Map(asset.KindClip), r.reg.Map(asset.KindBlendTree), r.opts.ClipOverrides)
	total := len(r.disc.Controllers)
	for i, c := range r.disc.Controllers {
		if err := ctx.Err(); err != nil {
			return err
		}
		out, n, err := controller.Rewrite(c, motions)
		if err != nil {
			r.start(StageControllers, total, i, c.Meta)
			return r.failed(StageControllers, total, i, c.Meta, converr.ControllerFailed(c, err))
		}
		if n == 0 {
			r.pass(StageControllers, total, i, asset.KindController, c.Meta, "no affected states")
			continue
		}
		r.start(StageControllers, total, i, c.Meta)
		target, err := r.reg.GetOrInsert(ctx, asset.KindController, c.Meta, func(context.Context) (asset.Asset, error) {
			return out, nil
		})
		if err != nil {
			return r.failed(StageControllers, total, i, c.Meta, converr.ControllerFailed(c, err))
		}
		r.logger.Debug("controller rewritten",
			logging.String(logging.FieldAssetID, string(c.ID)),
			logging.Int("states", n),
		)
		r.converted(StageControllers, total, i, c.Meta, target)
	}
	return nil
}

func (r *run) buildRig(ctx context.Context) (*Result, error) {
	dup, err := rig.Duplicate(r.disc.Rig)
	if err != nil {
		return nil, converr.Wrap(converr.ErrValidation, StageRig, "duplicate", asset.Describe(r.disc.Rig), err)
	}
	changes := rig.Rebind(dup.Root, r.reg.Map(asset.KindController), r.reg.Map(asset.KindMaterial))

	root := r.opts.OutputRoot
	if err := r.store.EnsureDirectory(ctx, root); err != nil {
		return nil, converr.Wrap(converr.ErrStore, StageRig, "ensure directory", root, err)
	}
	target, err := r.store.UniquePath(ctx, path.Join(root, dup.Name))
	if err != nil {
		return nil, converr.Wrap(converr.ErrStore, StageRig, "unique path", dup.Name, err)
	}
	rigID, err := r.store.Save(ctx, dup, target)
	if err != nil {
		return nil, converr.Wrap(converr.ErrStore, StageRig, "save", target, err)
	}

	result := &Result{
		RunID:      r.id,
		OutputRoot: root,
		Rig:        rigID,
		RigPath:    target,
		Converted:  r.reg.Order(),
		Passed:     r.passed,
		Changes:    changes,
		Duration:   time.Since(r.started),
	}
	converted, _ := result.Counts()
	r.logger.Info("conversion completed",
		logging.String(logging.FieldEventType, "run_completed"),
		logging.String("rig_path", target),
		logging.Int("materials", converted[asset.KindMaterial]),
		logging.Int("textures", converted[asset.KindTexture]),
		logging.Int("clips", converted[asset.KindClip]),
		logging.Int("blend_trees", converted[asset.KindBlendTree]),
		logging.Int("controllers", converted[asset.KindController]),
		logging.Int("passed_through", len(r.passed)),
		logging.Int("rebound", len(changes)),
		logging.Duration("duration", result.Duration),
	)
	return result, nil
}
