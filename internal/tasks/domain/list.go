package domain

import (
	"sort"
	"strings"
)

type Filter string

const (
	FilterAll        Filter = "all"
	FilterMine       Filter = "my-tasks"
	FilterPending    Filter = "pending"
	FilterInProgress Filter = "in-progress"
	FilterCompleted  Filter = "completed"
)

type SortKey string

const (
	SortCreatedAt SortKey = "createdAt"
	SortDueDate   SortKey = "dueDate"
	SortPriority  SortKey = "priority"
	SortStatus    SortKey = "status"
	SortTitle     SortKey = "title"
)

// ParseFilter maps unknown or empty values to FilterAll.
func ParseFilter(s string) Filter {
	switch f := Filter(s); f {
	case FilterMine, FilterPending, FilterInProgress, FilterCompleted:
		return f
	}
	return FilterAll
}

// ParseSort maps unknown or empty values to SortCreatedAt.
func ParseSort(s string) SortKey {
	switch k := SortKey(s); k {
	case SortDueDate, SortPriority, SortStatus, SortTitle:
		return k
	}
	return SortCreatedAt
}

var statusOrder = map[Status]int{
	StatusPending:    1,
	StatusInProgress: 2,
	StatusCompleted:  3,
}

// Apply filters tasks for userID and orders them by key. The input is not
// modified.
func Apply(tasks []Task, userID string, filter Filter, key SortKey) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if matches(t, userID, filter) {
			out = append(out, t)
		}
	}

	var less func(a, b *Task) bool
	switch key {
	case SortDueDate:
		// undated tasks go last
		less = func(a, b *Task) bool {
			if a.DueDate == nil || b.DueDate == nil {
				return a.DueDate != nil && b.DueDate == nil
			}
			return a.DueDate.Before(*b.DueDate)
		}
	case SortPriority:
		less = func(a, b *Task) bool { return a.Priority.Rank() > b.Priority.Rank() }
	case SortStatus:
		less = func(a, b *Task) bool { return statusOrder[a.Status] < statusOrder[b.Status] }
	case SortTitle:
		less = func(a, b *Task) bool { return strings.ToLower(a.Title) < strings.ToLower(b.Title) }
	default:
		less = func(a, b *Task) bool { return a.CreatedAt.After(b.CreatedAt) }
	}

	sort.SliceStable(out, func(i, j int) bool { return less(&out[i], &out[j]) })
	return out
}

func matches(t Task, userID string, filter Filter) bool {
	switch filter {
	case FilterMine:
		return userID != "" && t.AssignedTo == userID
	case FilterPending:
		return t.Status == StatusPending
	case FilterInProgress:
		return t.Status == StatusInProgress
	case FilterCompleted:
		return t.Status == StatusCompleted
	}
	return true
}
