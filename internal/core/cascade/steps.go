package cascade

import (
	"fmt"
	"strconv"
	"strings"
)

// Step is one idempotent stage of a user deletion. Steps run in ascending order;
// each one assumes the earlier ones are durable.
type Step int

const (
	// StepDeleteOwnedPosts deletes the user's posts and every comment on them
	StepDeleteOwnedPosts Step = iota + 1
	// StepUnlinkAuthoredComments drops the user's comments from other posts' comment lists
	StepUnlinkAuthoredComments
	// StepRemoveAuthoredReplies drops the user's replies from every comment
	StepRemoveAuthoredReplies
	// StepDeleteAuthoredComments deletes the user's remaining top-level comments
	StepDeleteAuthoredComments
	// StepDeleteStories deletes the user's stories
	StepDeleteStories
	// StepRemoveLikes drops the user from every post, comment and reply likes set
	StepRemoveLikes
	// StepSeverEdges drops the user from every other user's followers, following and block list
	StepSeverEdges
	// StepDeleteUser deletes the user record itself
	StepDeleteUser
)

// Steps lists every step in execution order
var Steps = []Step{
	StepDeleteOwnedPosts,
	StepUnlinkAuthoredComments,
	StepRemoveAuthoredReplies,
	StepDeleteAuthoredComments,
	StepDeleteStories,
	StepRemoveLikes,
	StepSeverEdges,
	StepDeleteUser,
}

var stepNames = map[Step]string{
	StepDeleteOwnedPosts:       "delete-owned-posts",
	StepUnlinkAuthoredComments: "unlink-authored-comments",
	StepRemoveAuthoredReplies:  "remove-authored-replies",
	StepDeleteAuthoredComments: "delete-authored-comments",
	StepDeleteStories:          "delete-stories",
	StepRemoveLikes:            "remove-likes",
	StepSeverEdges:             "sever-edges",
	StepDeleteUser:             "delete-user",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return "step(" + strconv.Itoa(int(s)) + ")"
}

// Valid reports whether s is a known step
func (s Step) Valid() bool {
	_, ok := stepNames[s]
	return ok
}

// ParseStep accepts a step name ("remove-likes") or its 1-based number ("6")
func ParseStep(v string) (Step, error) {
	v = strings.TrimSpace(strings.ToLower(v))
	if n, err := strconv.Atoi(v); err == nil {
		if s := Step(n); s.Valid() {
			return s, nil
		}
		return 0, fmt.Errorf("unknown cascade step %d", n)
	}
	for s, name := range stepNames {
		if name == v {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown cascade step %q", v)
}

// StepError reports the first step of a deletion that failed.
// Steps before it have completed and stay applied; rerun from Step to finish.
type StepError struct {
	Err    error
	UserID string
	Step   Step
}

func (e *StepError) Error() string {
	return fmt.Sprintf("delete user %s: step %d (%s) failed: %v", e.UserID, int(e.Step), e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }
