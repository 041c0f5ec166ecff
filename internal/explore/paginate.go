package explore

// Window is the slice of one resource group selected by a pagination
// plan: fetch Count items starting at Offset within the group. A zero
// Count means the group contributes nothing to the requested page.
type Window struct {
	Count  int
	Offset int
}

// Plan is the result of paginating several independently counted resource
// groups as one logical sequence. Windows holds one entry per input
// group, in group order.
type Plan struct {
	Windows    []Window
	TotalCount int
	TotalPages int
	Page       int
	Limit      int
}

// Paginate computes, for an ordered list of group sizes and a global
// (limit, page), which slice of each group belongs to the requested page.
// Concatenating the windowed slices in group order reproduces exactly the
// [offset, offset+limit) window of the concatenated sequence, with
// offset = (page-1) * limit.
//
// Callers must validate limit ≥ 1 and page ≥ 1 first.
//
// A request past the last page is legal: it yields all-zero windows with
// TotalCount and TotalPages still populated. Zero total items still
// reports one (empty) page, never zero pages.
func Paginate(sizes []int, limit, page int) Plan {
	total := 0
	for _, n := range sizes {
		total += n
	}

	plan := Plan{
		Windows:    make([]Window, len(sizes)),
		TotalCount: total,
		TotalPages: 1,
		Page:       page,
		Limit:      limit,
	}
	if total > 0 {
		plan.TotalPages = (total + limit - 1) / limit
	}

	remaining := limit
	cursor := (page - 1) * limit

	for i, size := range sizes {
		// A cursor landing exactly on a group boundary skips the group
		// entirely rather than taking a zero-length slice from it.
		if cursor >= size {
			cursor -= size
			continue
		}
		if remaining == 0 {
			break
		}
		take := min(remaining, size-cursor)
		plan.Windows[i] = Window{Count: take, Offset: cursor}
		remaining -= take
		cursor = 0
	}

	return plan
}
