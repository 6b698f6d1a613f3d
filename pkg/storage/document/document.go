package document

import "time"

// User is the persisted form of a registered principal.
// Field names follow the legacy database.json layout.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password"`
	JoinedAt     time.Time `json:"joinedAt"`
}

// Task is the persisted form of a task record.
type Task struct {
	ID        string    `json:"_id"`
	OwnerID   string    `json:"userId"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
}

// Document is the single aggregate holding every user and task.
type Document struct {
	Users []User `json:"users"`
	Tasks []Task `json:"tasks"`
}

// Empty returns a document with empty (non-nil) collections.
func Empty() Document {
	return Document{Users: []User{}, Tasks: []Task{}}
}

// Clone returns a copy that shares no backing arrays with d.
func (d Document) Clone() Document {
	out := Document{
		Users: make([]User, len(d.Users)),
		Tasks: make([]Task, len(d.Tasks)),
	}
	copy(out.Users, d.Users)
	copy(out.Tasks, d.Tasks)
	return out
}

// UserByUsername returns the user with the exact (case-sensitive) username.
func (d Document) UserByUsername(username string) (User, bool) {
	for _, u := range d.Users {
		if u.Username == username {
			return u, true
		}
	}
	return User{}, false
}

// UserByID returns the user with the given id.
func (d Document) UserByID(id string) (User, bool) {
	for _, u := range d.Users {
		if u.ID == id {
			return u, true
		}
	}
	return User{}, false
}

// TaskIndex returns the position of the task with the given id or -1.
func (d Document) TaskIndex(id string) int {
	for i, t := range d.Tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// TasksByOwner returns the owner's tasks in store order.
func (d Document) TasksByOwner(ownerID string) []Task {
	out := make([]Task, 0)
	for _, t := range d.Tasks {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	return out
}

// NewUserID draws ids from gen until one is not used by any user.
func (d *Document) NewUserID(gen func() string) string {
	for {
		id := gen()
		if _, taken := d.UserByID(id); !taken {
			return id
		}
	}
}

// NewTaskID draws ids from gen until one is not used by any task.
func (d *Document) NewTaskID(gen func() string) string {
	for {
		id := gen()
		if d.TaskIndex(id) < 0 {
			return id
		}
	}
}

func (d *Document) normalize() {
	if d.Users == nil {
		d.Users = []User{}
	}
	if d.Tasks == nil {
		d.Tasks = []Task{}
	}
}
