package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projecthub-dev/projecthub-backend/internal/validation"
)

func sampleProject() *Project {
	return &Project{
		ID:        "p1",
		CreatedBy: "owner",
		Members: []Member{
			{UserID: "owner", Role: RoleAdmin},
			{UserID: "adm", Role: RoleAdmin},
			{UserID: "mem", Role: RoleMember},
			{UserID: "view", Role: RoleViewer},
		},
	}
}

func TestPermissions(t *testing.T) {
	p := sampleProject()

	tests := []struct {
		user                            string
		view, edit, del, tasks, comment bool
	}{
		{"owner", true, true, true, true, true},
		{"adm", true, false, false, true, true},
		{"mem", true, false, false, true, true},
		{"view", true, false, false, false, true},
		{"stranger", false, false, false, false, false},
		{"", false, false, false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.user, func(t *testing.T) {
			assert.Equal(t, tt.view, CanView(p, tt.user), "view")
			assert.Equal(t, tt.edit, CanEdit(p, tt.user), "edit")
			assert.Equal(t, tt.del, CanDelete(p, tt.user), "delete")
			assert.Equal(t, tt.tasks, CanWriteTasks(p, tt.user), "tasks")
			assert.Equal(t, tt.comment, CanComment(p, tt.user), "comment")
		})
	}
}

func TestCreatorWithoutMemberEntryCanStillView(t *testing.T) {
	p := &Project{CreatedBy: "owner"}
	assert.True(t, CanView(p, "owner"))
	assert.True(t, CanWriteTasks(p, "owner"))
}

func TestMemberIDs(t *testing.T) {
	assert.Equal(t, []string{"owner", "adm", "mem", "view"}, MemberIDs(sampleProject().Members))
	assert.Empty(t, MemberIDs(nil))
}

func TestProjectForm_Validate(t *testing.T) {
	valid := ProjectForm{
		Title:       "  Website relaunch ",
		Description: "Rebuild the marketing site",
		StartDate:   "2025-03-01",
		EndDate:     "2025-04-01",
	}

	t.Run("valid", func(t *testing.T) {
		f := valid
		start, end, err := f.Validate()
		require.NoError(t, err)
		assert.Equal(t, "Website relaunch", f.Title)
		assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), start)
		assert.Equal(t, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), end)
	})

	t.Run("end must be after start", func(t *testing.T) {
		f := valid
		f.EndDate = f.StartDate
		_, _, err := f.Validate()
		fields, ok := validation.AsFieldErrors(err)
		require.True(t, ok)
		assert.Equal(t, "end date must be after start date", fields["end_date"])
	})

	t.Run("field rules", func(t *testing.T) {
		f := ProjectForm{Title: "ab", Description: "short", StartDate: "yesterday"}
		_, _, err := f.Validate()
		fields, ok := validation.AsFieldErrors(err)
		require.True(t, ok)
		assert.Equal(t, "title must be at least 3 characters", fields["title"])
		assert.Equal(t, "description must be at least 10 characters", fields["description"])
		assert.Equal(t, "start_date must be a valid date", fields["start_date"])
		assert.Equal(t, "end_date is required", fields["end_date"])
	})
}

func TestUpdateProjectRequest_Merge(t *testing.T) {
	p := &Project{
		Title:       "Old title",
		Description: "Old description text",
		StartDate:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	title := "New title"
	req := UpdateProjectRequest{Title: &title}
	assert.True(t, req.TouchesForm())

	f := req.Merge(p)
	assert.Equal(t, "New title", f.Title)
	assert.Equal(t, "Old description text", f.Description)
	start, end, err := f.Validate()
	require.NoError(t, err)
	assert.Equal(t, p.StartDate, start)
	assert.Equal(t, p.EndDate, end)

	status := "active"
	assert.False(t, (&UpdateProjectRequest{Status: &status}).TouchesForm())
}

func TestComputeStats(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name                string
		total, completed    int
		end                 time.Time
		progress, remaining int
	}{
		{"no tasks", 0, 0, now.Add(48 * time.Hour), 0, 2},
		{"rounds half up", 3, 2, now.Add(time.Hour), 67, 1},
		{"all done", 4, 4, now.Add(36 * time.Hour), 100, 2},
		{"past end", 2, 1, now.Add(-time.Hour), 50, 0},
		{"exactly now", 1, 0, now, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ComputeStats(tt.total, tt.completed, tt.end, now)
			assert.Equal(t, tt.total, s.TotalTasks)
			assert.Equal(t, tt.completed, s.CompletedTasks)
			assert.Equal(t, tt.progress, s.Progress)
			assert.Equal(t, tt.remaining, s.DaysRemaining)
		})
	}
}

func TestMergeDashboard(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	owned := []Project{
		{ID: "a", UpdatedAt: t0},
		{ID: "b", UpdatedAt: t0.Add(2 * time.Hour)},
	}
	member := []Project{
		{ID: "b", UpdatedAt: t0.Add(2 * time.Hour)},
		{ID: "c", UpdatedAt: t0.Add(time.Hour)},
	}

	got := MergeDashboard(owned, member)
	ids := make([]string, 0, len(got))
	for _, p := range got {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"b", "c", "a"}, ids)
	assert.Empty(t, MergeDashboard(nil, nil))
}
