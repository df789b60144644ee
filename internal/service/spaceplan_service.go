package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/jhogstrom/ess-arbetsschema/config"
	"github.com/jhogstrom/ess-arbetsschema/internal/deck"
	"github.com/jhogstrom/ess-arbetsschema/internal/sheet"
	apperrors "github.com/jhogstrom/ess-arbetsschema/pkg/errors"
)

// SpaceplanOptions tune one spot plan run.
type SpaceplanOptions struct {
	// Reset paints all member shapes unknown before placing boats.
	Reset bool
}

// SpaceplanResult summarizes a spot plan run.
type SpaceplanResult struct {
	OutFile   string
	Reconcile ReconcileResult
	Colorize  ColorizeResult
	Reset     int
}

// SpaceplanService produces the yard map for the coming winter.
type SpaceplanService interface {
	Plan(ctx context.Context, opts SpaceplanOptions) (*SpaceplanResult, error)
}

type spaceplanService struct {
	cfg     *config.Config
	loader  *sheet.Loader
	palette Palette
	now     func() time.Time
	logger  *zap.Logger
}

// NewSpaceplanService creates a SpaceplanService.
func NewSpaceplanService(cfg *config.Config, loader *sheet.Loader, palette Palette, logger *zap.Logger) SpaceplanService {
	return &spaceplanService{cfg: cfg, loader: loader, palette: palette, now: time.Now, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// Plan
// ═══════════════════════════════════════════════════════════
//
// Requests, members and the map template are required. Ex-members, boats on
// land and the haul-out schedule are optional overlays; a missing one is
// logged and read as empty.

func (s *spaceplanService) Plan(ctx context.Context, opts SpaceplanOptions) (*SpaceplanResult, error) {
	sp := &s.cfg.Spaceplan
	dirs := s.cfg.Paths.BoatInfoDirs
	now := s.now()

	exMembers, err := s.optionalExMembers(sp.ExMembers, dirs)
	if err != nil {
		return nil, err
	}

	var onLand []int
	if t, err := s.optionalTable(ctx, sp.OnLand, dirs, "boats on land"); err != nil {
		return nil, err
	} else if t != nil {
		if onLand, err = MembersOnLand(t, sp.Columns, now.Year(), s.logger); err != nil {
			return nil, err
		}
	}

	requestTable, err := s.requiredTable(ctx, sp.Requests, dirs)
	if err != nil {
		return nil, err
	}
	requests, err := RequestedMembers(requestTable, sp.Columns.RequestMemberID, s.logger)
	if err != nil {
		return nil, err
	}
	noSpot, err := NoSpotRequested(requestTable, sp.Columns, sp.NoSpotOption, s.logger)
	if err != nil {
		return nil, err
	}

	memberTable, err := s.requiredTable(ctx, sp.Members, dirs)
	if err != nil {
		return nil, err
	}
	members, err := ReadMembers(memberTable, sp.Columns, s.logger)
	if err != nil {
		return nil, err
	}

	var scheduled []int
	if t, err := s.optionalTable(ctx, sp.Scheduled, dirs, "haul-out schedule"); err != nil {
		return nil, err
	} else if t != nil {
		if scheduled, err = ScheduledMembers(t, sp.Columns.MemberID, s.logger); err != nil {
			return nil, err
		}
	}

	rec := Reconcile(ReconcileInput{
		Requests:  requests,
		OnLand:    onLand,
		Scheduled: scheduled,
		NoSpot:    noSpot,
		Members:   members,
	}, s.logger)

	mapFile, err := sheet.Resolve(sp.MapFile, s.cfg.Paths.TemplateDirs, s.logger)
	if err != nil {
		return nil, err
	}
	d, err := deck.Open(mapFile)
	if err != nil {
		return nil, err
	}
	slide, err := d.Slide(0)
	if err != nil {
		return nil, err
	}

	res := &SpaceplanResult{OutFile: config.WithYear(sp.OutFile, now.Year()), Reconcile: rec}
	c := NewColorizer(s.palette, sp.Scale, LabelFormat(sp.Label), s.logger)
	if opts.Reset {
		res.Reset = c.ResetUnhandled(slide)
	}
	res.Colorize = c.Apply(slide, rec.Boats, exMembers, onLand)
	c.UpdateRevision(slide, sp.Revision, len(rec.Boats), now)
	c.UpdateLegend(slide)

	if err := os.MkdirAll(filepath.Dir(res.OutFile), 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	if err := d.Save(res.OutFile); err != nil {
		if errors.Is(err, apperrors.ErrFileLocked) {
			s.logger.Error("could not save file, it is open in another application", zap.String("file", res.OutFile))
		}
		return nil, err
	}
	s.logger.Info("map written",
		zap.String("file", res.OutFile),
		zap.Int("boats", len(rec.Boats)),
		zap.Int("accepted", res.Colorize.Accepted),
		zap.Int("declined", res.Colorize.Declined),
	)
	return res, nil
}

func (s *spaceplanService) requiredTable(ctx context.Context, name string, dirs []string) (*sheet.Table, error) {
	source, err := sheet.ResolveSource(name, dirs, s.logger)
	if err != nil {
		return nil, err
	}
	return s.loader.Load(ctx, source)
}

func (s *spaceplanService) optionalTable(ctx context.Context, name string, dirs []string, what string) (*sheet.Table, error) {
	if name == "" {
		return nil, nil
	}
	t, err := s.requiredTable(ctx, name, dirs)
	if errors.Is(err, apperrors.ErrSourceNotFound) {
		s.logger.Warn(what+" not found, skipping", zap.String("file", name))
		return nil, nil
	}
	return t, err
}

func (s *spaceplanService) optionalExMembers(name string, dirs []string) ([]int, error) {
	if name == "" {
		return nil, nil
	}
	path, err := sheet.Resolve(name, dirs, s.logger)
	if errors.Is(err, apperrors.ErrSourceNotFound) {
		s.logger.Warn("ex-members file not found, skipping", zap.String("file", name))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	ids, err := ReadExMembersFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ex-members: %w", err)
	}
	s.logger.Info("read ex-members", zap.String("file", path), zap.Int("count", len(ids)))
	return ids, nil
}
