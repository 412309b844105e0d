package realtime

import "time"

const (
	projectChannelPrefix = "pm:project:" // pm:project:{project_id}
	taskChannelPrefix    = "pm:task:"    // pm:task:{task_id}
	userChannelPrefix    = "pm:user:"    // pm:user:{user_id}
)

type EventType string

const (
	EventCreated EventType = "created"
	EventUpdated EventType = "updated"
	EventDeleted EventType = "deleted"
)

type Entity string

const (
	EntityProject Entity = "project"
	EntityTask    Entity = "task"
	EntityComment Entity = "comment"
	EntityMember  Entity = "member"
)

// Event is the change notification published after a successful write.
type Event struct {
	Type      EventType `json:"type"`
	Entity    Entity    `json:"entity"`
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id,omitempty"`
	TaskID    string    `json:"task_id,omitempty"`
	At        time.Time `json:"at"`
}

func ProjectChannel(projectID string) string { return projectChannelPrefix + projectID }

func TaskChannel(taskID string) string { return taskChannelPrefix + taskID }

func UserChannel(userID string) string { return userChannelPrefix + userID }

// UserChannels returns the dashboard channel of every given user.
func UserChannels(userIDs ...string) []string {
	out := make([]string, 0, len(userIDs))
	seen := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, UserChannel(id))
	}
	return out
}
