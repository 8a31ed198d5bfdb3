package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"
	"time"

	"toolcrib/pkg/domain"
)

// LoadTools returns the tool collection, reading the primary and overlay
// files unless a cached copy exists and forceReload is false. Read failures
// are logged and yield an empty collection.
func (s *Store) LoadTools(ctx context.Context, forceReload bool) []domain.Tool {
	if s.tools != nil && !forceReload {
		return cloneTools(s.tools)
	}
	start := time.Now()
	tools, err := s.readTools()
	s.observe(ctx, "load_tools", start, err)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("tools file not found", "path", s.paths.Tools)
		} else {
			s.logger.Error("load tools failed", "path", s.paths.Tools, "error", err)
		}
		return []domain.Tool{}
	}
	s.tools = tools
	return cloneTools(tools)
}

func (s *Store) readTools() ([]domain.Tool, error) {
	overlay := s.readOverlay()

	t, skipped, err := readTable(s.paths.Tools, 0)
	if err != nil {
		return nil, err
	}
	for _, re := range skipped {
		s.logger.Error("skipping unreadable tool row", "path", s.paths.Tools, "line", re.line, "error", re.err)
	}
	s.toolColumns = slices.Clone(t.header)

	tools := make([]domain.Tool, 0, len(t.rows))
	for _, r := range t.rows {
		id, _ := r.get(idColumns...)
		pos, _ := r.get(positionColumns...)
		raw, _ := r.get(statusColumns...)
		tool := domain.Tool{
			ID:              strings.TrimSpace(id),
			Name:            strings.TrimSpace(r.values[nameColumn]),
			Status:          domain.ParseStatus(raw),
			StoragePosition: strings.TrimSpace(pos),
		}
		for _, col := range t.header {
			if !isCoreColumn(col) {
				tool.Attributes.Set(col, r.values[col])
			}
		}
		if extra, ok := overlay[tool.Name]; ok {
			for _, col := range s.overlayColumns {
				if col != nameColumn {
					tool.Attributes.Set(col, extra.values[col])
				}
			}
		}
		extractOverlay(&tool)
		tools = append(tools, tool)
	}
	return tools, nil
}

// readOverlay loads the per-toolbox overlay keyed by trimmed tool name. A
// missing or unreadable overlay leaves the tools without overlay data.
func (s *Store) readOverlay() map[string]row {
	out := make(map[string]row)
	t, skipped, err := readTable(s.paths.Overlay, 0)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Error("load overlay failed", "path", s.paths.Overlay, "error", err)
		}
		return out
	}
	for _, re := range skipped {
		s.logger.Error("skipping unreadable overlay row", "path", s.paths.Overlay, "line", re.line, "error", re.err)
	}
	s.overlayColumns = slices.Clone(t.header)
	for _, r := range t.rows {
		name := strings.TrimSpace(r.values[nameColumn])
		if name == "" {
			continue
		}
		out[name] = r
	}
	return out
}

// SaveTools rewrites the primary and overlay files from tools and replaces
// the cache with them. Tools with the fixture-tool status are not written to
// the overlay. On failure the cache is dropped so the next load reads disk.
func (s *Store) SaveTools(ctx context.Context, tools []domain.Tool) error {
	start := time.Now()
	err := s.writeTools(ctx, tools)
	s.observe(ctx, "save_tools", start, err)
	if err != nil {
		s.tools = nil
		s.logger.Error("save tools failed", "path", s.paths.Tools, "error", err)
		return fmt.Errorf("save tools: %w", err)
	}
	s.tools = cloneTools(tools)
	return nil
}

func (s *Store) writeTools(ctx context.Context, tools []domain.Tool) error {
	primaryCols := s.toolColumns
	if len(primaryCols) == 0 {
		primaryCols = slices.Clone(defaultToolColumns)
	}
	overlayCols := overlayColumnsFor(s.overlayColumns, primaryCols, tools)

	primary := make([][]string, 0, len(tools))
	overlay := make([][]string, 0, len(tools))
	for _, t := range tools {
		_, values := flattenTool(t)
		rec := make([]string, len(primaryCols))
		for i, col := range primaryCols {
			switch {
			case slices.Contains(idColumns, col):
				rec[i] = t.ID
			case col == nameColumn:
				rec[i] = t.Name
			case slices.Contains(statusColumns, col):
				rec[i] = t.Status.DiskValue()
			case slices.Contains(positionColumns, col):
				rec[i] = t.StoragePosition
			default:
				rec[i] = values[col]
			}
		}
		primary = append(primary, rec)

		if t.Status.Is(domain.StatusFixtureTool) {
			continue
		}
		orec := make([]string, len(overlayCols))
		for i, col := range overlayCols {
			if col == nameColumn {
				orec[i] = t.Name
				continue
			}
			orec[i] = values[col]
		}
		overlay = append(overlay, orec)
	}

	payload, err := encodeTable(primaryCols, primary, ';', true)
	if err != nil {
		return err
	}
	if err := s.writeFile(ctx, s.paths.Tools, payload); err != nil {
		return err
	}
	s.toolColumns = primaryCols

	payload, err = encodeTable(overlayCols, overlay, ';', true)
	if err != nil {
		return err
	}
	if err := s.writeFile(ctx, s.paths.Overlay, payload); err != nil {
		return fmt.Errorf("write overlay: %w", err)
	}
	s.overlayColumns = overlayCols
	return nil
}

// DeleteTool removes the tool with id and saves. It reports whether a tool
// was removed.
func (s *Store) DeleteTool(ctx context.Context, id string) (bool, error) {
	tools := s.LoadTools(ctx, false)
	before := len(tools)
	kept := slices.DeleteFunc(tools, func(t domain.Tool) bool { return t.ID == id })
	if len(kept) == before {
		return false, nil
	}
	if err := s.SaveTools(ctx, kept); err != nil {
		return false, err
	}
	return true, nil
}

// ToolColumns returns the primary header observed at the last load or save.
func (s *Store) ToolColumns() []string { return slices.Clone(s.toolColumns) }

// OverlayColumns returns the overlay header observed at the last load or
// save.
func (s *Store) OverlayColumns() []string { return slices.Clone(s.overlayColumns) }

func cloneTools(tools []domain.Tool) []domain.Tool {
	out := make([]domain.Tool, len(tools))
	for i, t := range tools {
		out[i] = t.Clone()
	}
	return out
}
