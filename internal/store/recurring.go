package store

import (
	"context"
	"fmt"
	"strings"

	"kharcha/internal/core"
)

// Templates returns the user's recurring templates.
func (s *Store) Templates(ctx context.Context, username string) ([]core.RecurringTemplate, error) {
	data, err := s.Read(ctx, username)
	if err != nil {
		return nil, err
	}
	return data.RecurringTemplates, nil
}

// AddTemplate creates a recurring template. The day of month is forced into
// 1-31 at creation; the recurring engine clamps it again to the actual month
// length when materializing. Enabled defaults to true.
func (s *Store) AddTemplate(ctx context.Context, username string, in core.TemplateInput) (core.RecurringTemplate, error) {
	data, err := s.Read(ctx, username)
	if err != nil {
		return core.RecurringTemplate{}, err
	}

	dom := in.DayOfMonth
	if dom < 1 {
		dom = 1
	}
	if dom > 31 {
		dom = 31
	}

	enabled := true
	if in.Enabled != nil {
		enabled = *in.Enabled
	}

	tags := make([]string, 0, len(in.Tags))
	for _, t := range in.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	if len(tags) == 0 {
		tags = nil
	}

	tpl := core.RecurringTemplate{
		ID:          s.NewID(),
		Amount:      in.Amount,
		Category:    in.Category,
		Description: in.Description,
		DayOfMonth:  dom,
		Tags:        tags,
		Split:       in.Split,
		Enabled:     enabled,
	}

	data.RecurringTemplates = append(data.RecurringTemplates, tpl)
	if err := s.Write(ctx, username, data); err != nil {
		return core.RecurringTemplate{}, err
	}
	return tpl, nil
}

// UpdateTemplate patches a recurring template. The lastRunMonth marker is
// owned by the recurring engine and cannot be patched.
func (s *Store) UpdateTemplate(ctx context.Context, username, id string, patch core.TemplatePatch) (core.RecurringTemplate, error) {
	data, err := s.Read(ctx, username)
	if err != nil {
		return core.RecurringTemplate{}, err
	}

	idx := -1
	for i := range data.RecurringTemplates {
		if data.RecurringTemplates[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return core.RecurringTemplate{}, fmt.Errorf("recurring template %s: %w", id, core.ErrNotFound)
	}

	t := &data.RecurringTemplates[idx]
	if patch.Amount != nil {
		t.Amount = *patch.Amount
	}
	if patch.Category != nil {
		t.Category = *patch.Category
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.DayOfMonth != nil {
		dom := *patch.DayOfMonth
		if dom < 1 {
			dom = 1
		}
		if dom > 31 {
			dom = 31
		}
		t.DayOfMonth = dom
	}
	if patch.Tags != nil {
		t.Tags = *patch.Tags
	}
	if patch.Split != nil {
		t.Split = *patch.Split
	}
	if patch.Enabled != nil {
		t.Enabled = *patch.Enabled
	}

	if err := s.Write(ctx, username, data); err != nil {
		return core.RecurringTemplate{}, err
	}
	return *t, nil
}

// DeleteTemplate removes a recurring template; absent ids are a no-op.
func (s *Store) DeleteTemplate(ctx context.Context, username, id string) error {
	data, err := s.Read(ctx, username)
	if err != nil {
		return err
	}

	kept := data.RecurringTemplates[:0]
	for _, t := range data.RecurringTemplates {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	data.RecurringTemplates = kept

	return s.Write(ctx, username, data)
}
