package progress

import (
	"math"
	"sort"
)

type State string

const (
	Locked     State = "LOCKED"
	Unlocked   State = "UNLOCKED"
	InProgress State = "IN_PROGRESS"
	Completed  State = "COMPLETED"
)

type ContentNode struct {
	ID          uint
	IsPublished bool
	IsRequired  bool
}

type SubTopicNode struct {
	ID         uint
	OrderIndex int
	IsActive   bool
	Contents   []ContentNode
}

type LevelTree struct {
	LevelID   uint
	HasTest   bool
	SubTopics []SubTopicNode
}

type SubTopicView struct {
	SubTopicID        uint  `json:"subTopicId"`
	State             State `json:"state"`
	CompletedRequired int   `json:"completedRequired"`
	TotalRequired     int   `json:"totalRequired"`
	Acknowledged      bool  `json:"acknowledged"`
	TestUnlocked      bool  `json:"testUnlocked"`
}

type LevelView struct {
	LevelID            uint           `json:"levelId"`
	Progress           int            `json:"progress"`
	CompletedSubTopics int            `json:"completedSubTopics"`
	TotalSubTopics     int            `json:"totalSubTopics"`
	Completed          bool           `json:"completed"`
	TestUnlocked       bool           `json:"testUnlocked"`
	SubTopics          []SubTopicView `json:"subTopics"`
}

// Percent is round(100*done/total) clamped to [0,100]; zero when total is zero.
func Percent(done, total int) int {
	if total <= 0 {
		return 0
	}
	p := int(math.Round(100 * float64(done) / float64(total)))
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// requiredCounts counts published+required items and how many of them are done.
func requiredCounts(node SubTopicNode, snap Snapshot) (done, total, published int) {
	for _, c := range node.Contents {
		if !c.IsPublished {
			continue
		}
		published++
		if !c.IsRequired {
			continue
		}
		total++
		if snap.ContentCompleted(Key(c.ID)) {
			done++
		}
	}
	return done, total, published
}

// SubTopicComplete holds when the sub-topic has published content and every
// published required item is marked completed.
func SubTopicComplete(node SubTopicNode, snap Snapshot) bool {
	done, total, published := requiredCounts(node, snap)
	return published > 0 && done == total
}

// ActiveOrdered returns active sub-topics sorted by order index then id.
func ActiveOrdered(nodes []SubTopicNode) []SubTopicNode {
	out := make([]SubTopicNode, 0, len(nodes))
	for _, n := range nodes {
		if n.IsActive {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].OrderIndex != out[j].OrderIndex {
			return out[i].OrderIndex < out[j].OrderIndex
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Evaluate derives the state of every active sub-topic in a level.
func Evaluate(level LevelTree, snap Snapshot) LevelView {
	active := ActiveOrdered(level.SubTopics)
	view := LevelView{
		LevelID:        level.LevelID,
		TotalSubTopics: len(active),
		SubTopics:      make([]SubTopicView, 0, len(active)),
	}

	prevCompleted := true
	for _, st := range active {
		done, total, _ := requiredCounts(st, snap)
		complete := SubTopicComplete(st, snap)

		var state State
		switch {
		case complete:
			state = Completed
		case !prevCompleted:
			state = Locked
		case done > 0:
			state = InProgress
		default:
			state = Unlocked
		}
		if complete {
			view.CompletedSubTopics++
		}
		view.SubTopics = append(view.SubTopics, SubTopicView{
			SubTopicID:        st.ID,
			State:             state,
			CompletedRequired: done,
			TotalRequired:     total,
			Acknowledged:      snap.HasSubTopic(Key(st.ID)),
			TestUnlocked:      complete,
		})
		prevCompleted = complete
	}

	view.Progress = Percent(view.CompletedSubTopics, view.TotalSubTopics)
	view.Completed = view.TotalSubTopics > 0 && view.CompletedSubTopics == view.TotalSubTopics
	view.TestUnlocked = view.Completed && level.HasTest
	return view
}

// StateOf returns the derived state of one sub-topic within its level.
func StateOf(level LevelTree, subTopicID uint, snap Snapshot) (State, bool) {
	for _, v := range Evaluate(level, snap).SubTopics {
		if v.SubTopicID == subTopicID {
			return v.State, true
		}
	}
	return "", false
}

// ModuleProgress is the share of completed active sub-topics across all levels.
func ModuleProgress(levels []LevelTree, snap Snapshot) int {
	done, total := 0, 0
	for _, l := range levels {
		v := Evaluate(l, snap)
		done += v.CompletedSubTopics
		total += v.TotalSubTopics
	}
	return Percent(done, total)
}
