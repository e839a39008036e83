package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/palmvoyage/tripfund/internal/estimate"
	"github.com/palmvoyage/tripfund/internal/geocode"
	"github.com/palmvoyage/tripfund/internal/planner"
	"github.com/palmvoyage/tripfund/internal/source"
	"github.com/palmvoyage/tripfund/internal/store"
	"go.uber.org/zap"
)

// ImportOptions controls ImportDir.
type ImportOptions struct {
	Planner  *planner.Planner
	Geocoder geocode.Geocoder
	Today    time.Time
	// Force re-imports files whose mtime and size are unchanged.
	Force bool
	Log   *zap.Logger
}

// ImportResult reports what an import did.
type ImportResult struct {
	TotalFiles int
	Unchanged  int
	Parsed     int
	FileErrors int
	Imported   int
	Invalid    int
	Located    int
	// Forgotten counts tracked files under root that no longer exist.
	Forgotten int
	// Errors holds one error per failed file or rejected trip.
	Errors []error
}

// ImportDir discovers trip files under root, parses the ones that changed
// since the last import, plans their funding and saves them. A file is
// only marked as imported when all of its trips were accepted.
func ImportDir(ctx context.Context, root string, st *store.Store, opts ImportOptions, progressFn ProgressFunc) (*ImportResult, error) {
	if opts.Planner == nil {
		opts.Planner = planner.New(planner.DefaultOptions())
	}
	if opts.Today.IsZero() {
		opts.Today = estimate.Today()
	}
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	files, err := source.ScanDir(root)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}

	result := &ImportResult{TotalFiles: len(files)}

	tracked, err := st.GetTrackedFiles()
	if err != nil {
		return nil, fmt.Errorf("reading import tracker: %w", err)
	}
	if err := forgetMissing(st, root, files, tracked, result); err != nil {
		return result, err
	}
	if len(files) == 0 {
		return result, nil
	}

	// Diff: partition into changed and unchanged
	var toParse []source.DiscoveredFile
	states := make(map[string]store.FileInfo, len(files))
	for _, f := range files {
		info, err := os.Stat(f.Path)
		if err != nil {
			result.FileErrors++
			result.Errors = append(result.Errors, err)
			continue
		}
		fi := store.FileInfo{MtimeNs: info.ModTime().UnixNano(), SizeBytes: info.Size()}
		states[f.Path] = fi

		if prev, ok := tracked[f.Path]; ok && !opts.Force && prev == fi {
			result.Unchanged++
			continue
		}
		toParse = append(toParse, f)
	}

	log.Debug("import diff",
		zap.String("root", root),
		zap.Int("files", len(files)),
		zap.Int("unchanged", result.Unchanged),
		zap.Int("changed", len(toParse)))

	for _, pr := range ParseFiles(toParse, result.Unchanged, result.TotalFiles, progressFn) {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if pr.Err != nil {
			result.FileErrors++
			result.Errors = append(result.Errors, pr.Err)
			log.Warn("trip file skipped", zap.String("path", pr.File.Path), zap.Error(pr.Err))
			continue
		}
		result.Parsed++

		clean := true
		for _, e := range pr.Entries {
			ok, err := importEntry(ctx, st, opts, log, e, result)
			if err != nil {
				return result, err
			}
			clean = clean && ok
		}

		if clean {
			if err := st.TrackFile(pr.File.Path, states[pr.File.Path]); err != nil {
				return result, fmt.Errorf("tracking %s: %w", pr.File.Path, err)
			}
		}
	}

	return result, nil
}

// importEntry validates, plans, geocodes and saves one parsed trip. It
// reports false when the trip was rejected. Store failures are returned.
func importEntry(ctx context.Context, st *store.Store, opts ImportOptions, log *zap.Logger, e source.Entry, result *ImportResult) (bool, error) {
	trip := e.Trip
	if err := estimate.Validate(trip, opts.Today); err != nil {
		result.Invalid++
		result.Errors = append(result.Errors, fmt.Errorf("trip %q: %w", trip.Name, err))
		log.Warn("trip rejected", zap.String("trip", trip.Name), zap.Error(err))
		return false, nil
	}

	plan, err := opts.Planner.Plan(opts.Today, estimate.PlanInputs(trip), e.Monthly)
	switch {
	case errors.Is(err, planner.ErrInvalidDate):
		// Validate already rejects past departures; keep the trip unplanned.
		log.Debug("trip not planned", zap.String("trip", trip.Name), zap.Error(err))
	case err != nil:
		return false, err
	default:
		estimate.ApplyPlan(&trip, plan)
	}

	result.Located += geocode.Fill(ctx, opts.Geocoder, &trip, log)

	if err := st.SaveTrip(&trip); err != nil {
		return false, fmt.Errorf("saving trip %q: %w", trip.Name, err)
	}
	result.Imported++
	return true, nil
}

// forgetMissing drops tracker rows for files under root that the scan no
// longer finds, so a file restored later is imported again. Saved trips
// are kept.
func forgetMissing(st *store.Store, root string, files []source.DiscoveredFile, tracked map[string]store.FileInfo, result *ImportResult) error {
	seen := make(map[string]bool, len(files))
	for _, f := range files {
		seen[f.Path] = true
	}
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	prefix := filepath.Clean(root) + string(filepath.Separator)
	for path := range tracked {
		if seen[path] || !strings.HasPrefix(path, prefix) {
			continue
		}
		if err := st.DeleteFileTracker(path); err != nil {
			return fmt.Errorf("forgetting %s: %w", path, err)
		}
		delete(tracked, path)
		result.Forgotten++
	}
	return nil
}
