package engine

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/gamelink/pkg/errors"
)

// selectItems settles which ids to process. The first source that yields
// anything wins: explicit ids, --all, the stored selection, then the
// operator. The result is recorded unless this is a dry run; --reselect
// clears the record first, so an empty pick leaves it empty.
func (e *Engine) selectItems(entries []Entry, opts Options) ([]string, error) {
	var (
		ids    []string
		source string
	)

	if opts.Reselect && !opts.DryRun {
		if err := e.deps.Store.Reset(); err != nil {
			return nil, err
		}
	}

	switch {
	case len(opts.Select) > 0:
		ids, source = dedupe(opts.Select), "flag"
	case opts.All:
		for _, en := range entries {
			ids = append(ids, en.Item.ID)
		}
		source = "all"
	}

	if ids == nil && !opts.Reselect {
		stored, err := e.deps.Store.Load()
		if err != nil {
			return nil, err
		}
		if len(stored) > 0 {
			e.logger.Debug().Strs("ids", stored).Msg("Using stored selection")
			return stored, nil
		}
	}

	if ids == nil {
		labels := make([]string, len(entries))
		for i, en := range entries {
			labels[i] = fmt.Sprintf("%s (%s)", en.Meta.DisplayName, en.Item.ID)
		}
		picked, err := e.deps.Provider.ChooseMany("Select the games to link", labels)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrInvalidInput, "selection prompt failed")
		}
		for _, i := range picked {
			ids = append(ids, entries[i].Item.ID)
		}
		source = "operator"
	}

	if len(ids) == 0 {
		return nil, nil
	}
	e.logger.Debug().Str("source", source).Strs("ids", ids).Msg("Selection settled")

	if opts.DryRun {
		return ids, nil
	}
	if _, err := e.deps.Store.Append(ids...); err != nil {
		return nil, err
	}
	return ids, nil
}

func dedupe(ids []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, id := range ids {
		for _, part := range strings.Split(id, ",") {
			part = strings.TrimSpace(part)
			if part == "" || seen[part] {
				continue
			}
			seen[part] = true
			out = append(out, part)
		}
	}
	return out
}
