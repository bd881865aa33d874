package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/rawscene/internal/config"
	"github.com/Faultbox/rawscene/internal/logger"
	"github.com/Faultbox/rawscene/internal/scenefile"
	"github.com/Faultbox/rawscene/pkg/diag"
	"github.com/Faultbox/rawscene/pkg/encoding"
	"github.com/Faultbox/rawscene/pkg/materials"
	"github.com/Faultbox/rawscene/pkg/math"
	"github.com/Faultbox/rawscene/pkg/raw"
	"github.com/Faultbox/rawscene/pkg/texture"
)

// pipeline carries one conversion from scene file to raw model.
type pipeline struct {
	cfg   *config.Config
	log   *zap.Logger
	diags *diag.Collector
}

func newPipeline(cfg *config.Config) *pipeline {
	log := logger.Named("convert")
	return &pipeline{cfg: cfg, log: log, diags: diag.NewCollector(log)}
}

// load reads the scene and builds the model without any geometry passes.
func (p *pipeline) load(path string) (*raw.Model, error) {
	scene, err := scenefile.LoadFile(path)
	if err != nil {
		return nil, err
	}

	names, err := encoding.NewDecoder(p.cfg.Names.Encoding)
	if err != nil {
		return nil, err
	}
	locator := texture.NewLocator(p.log.Named("textures"), p.cfg.Textures.SearchPaths...)
	opts := scenefile.Options{
		Binder: materials.NewBinder(materials.DefaultChain(), locator, names, p.diags),
		Diags:  p.diags,
		Log:    p.log,
	}
	if p.cfg.Textures.Probe {
		opts.Prober = &texture.Prober{DetectAlpha: p.cfg.Textures.DetectAlpha}
	}

	model, err := scene.Build(opts)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", path, err)
	}
	return model, nil
}

// convert loads the scene and runs the configured geometry passes.
func (p *pipeline) convert(path string) (*raw.Model, error) {
	model, err := p.load(path)
	if err != nil {
		return nil, err
	}

	normals, err := p.cfg.Convert.ComputeNormalsOption()
	if err != nil {
		return nil, err
	}
	model.TransformGeometry(normals)
	if p.cfg.Convert.FlipV {
		model.TransformTextures([]func(math.Vec2) math.Vec2{raw.FlipV})
	}
	model.Condense()

	if err := model.Validate(); err != nil {
		return nil, fmt.Errorf("validate %s: %w", path, err)
	}
	return model, nil
}

// partition converts the scene and splits it into one model per material.
func (p *pipeline) partition(path string) ([]*raw.Model, error) {
	model, err := p.convert(path)
	if err != nil {
		return nil, err
	}
	keep, err := p.cfg.Convert.KeepAttributes()
	if err != nil {
		return nil, err
	}
	parts := model.CreateMaterialModels(p.cfg.Convert.ShortIndices, keep, p.cfg.Convert.ForceDiscrete)
	if p.cfg.Convert.ShortIndices {
		for i, part := range parts {
			if err := part.CheckIndexWidth(); err != nil {
				return nil, fmt.Errorf("part %d: %w", i, err)
			}
		}
	}
	return parts, nil
}
