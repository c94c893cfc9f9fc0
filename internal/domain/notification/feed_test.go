package notification

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func note(id string, at time.Time) Notification {
	return Notification{ID: id, Kind: KindSupportTicket, Title: "t", CreatedAt: at}
}

func TestFeed_Apply(t *testing.T) {
	now := time.Now()

	t.Run("insert then duplicate insert is ignored", func(t *testing.T) {
		f := NewFeed(10)
		assert.True(t, f.Apply(Change{Op: OpInsert, Notification: note("a", now)}))

		dup := note("a", now)
		dup.Title = "changed"
		assert.False(t, f.Apply(Change{Op: OpInsert, Notification: dup}))

		got, ok := f.Get("a")
		require.True(t, ok)
		assert.Equal(t, "t", got.Title)
	})

	t.Run("update of unknown id inserts", func(t *testing.T) {
		f := NewFeed(10)
		assert.True(t, f.Apply(Change{Op: OpUpdate, Notification: note("a", now)}))
		assert.Equal(t, 1, f.Len())
	})

	t.Run("identical update is ignored", func(t *testing.T) {
		f := NewFeed(10)
		n := note("a", now)
		f.Apply(Change{Op: OpInsert, Notification: n})
		assert.False(t, f.Apply(Change{Op: OpUpdate, Notification: n}))
	})

	t.Run("update replaces content", func(t *testing.T) {
		f := NewFeed(10)
		f.Apply(Change{Op: OpInsert, Notification: note("a", now)})
		n := note("a", now)
		n.Message = "new"
		assert.True(t, f.Apply(Change{Op: OpUpdate, Notification: n}))
		got, _ := f.Get("a")
		assert.Equal(t, "new", got.Message)
	})

	t.Run("delete", func(t *testing.T) {
		f := NewFeed(10)
		assert.False(t, f.Apply(Change{Op: OpDelete, Notification: note("a", now)}))
		f.Apply(Change{Op: OpInsert, Notification: note("a", now)})
		assert.True(t, f.Apply(Change{Op: OpDelete, Notification: Notification{ID: "a"}}))
		assert.Equal(t, 0, f.Len())
	})

	t.Run("empty id and unknown op are ignored", func(t *testing.T) {
		f := NewFeed(10)
		assert.False(t, f.Apply(Change{Op: OpInsert}))
		assert.False(t, f.Apply(Change{Op: "TRUNCATE", Notification: note("a", now)}))
	})
}

func TestFeed_ItemsNewestFirstAndCapacity(t *testing.T) {
	base := time.Now()
	f := NewFeed(3)
	for i := 0; i < 5; i++ {
		f.Apply(Change{Op: OpInsert, Notification: note(fmt.Sprintf("n%d", i), base.Add(time.Duration(i)*time.Minute))})
	}

	items := f.Items()
	require.Len(t, items, 3)
	assert.Equal(t, "n4", items[0].ID)
	assert.Equal(t, "n3", items[1].ID)
	assert.Equal(t, "n2", items[2].ID)
}

func TestFeed_ReplayConverges(t *testing.T) {
	now := time.Now()
	changes := []Change{
		{Op: OpInsert, Notification: note("a", now)},
		{Op: OpInsert, Notification: note("b", now.Add(time.Second))},
		{Op: OpDelete, Notification: note("a", now)},
	}

	f := NewFeed(10)
	for _, c := range changes {
		f.Apply(c)
	}
	once := f.Items()
	for _, c := range changes {
		f.Apply(c)
	}
	// a is re-inserted by the replayed insert and removed again by the replayed delete
	assert.Equal(t, once, f.Items())
}

func TestFeed_ConcurrentApply(t *testing.T) {
	f := NewFeed(1000)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			f.Apply(Change{Op: OpInsert, Notification: note(fmt.Sprintf("n%d", i%10), time.Now())})
			_ = f.Items()
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 10, f.Len())
}

func TestDismissalSet(t *testing.T) {
	now := time.Now()
	s := NewDismissalSet("a")

	assert.True(t, s.Contains("a"))
	assert.False(t, s.Contains("b"))

	added := s.Add("a", "b", "", "b")
	assert.Equal(t, []string{"b"}, added)

	visible := s.Filter([]Notification{note("a", now), note("b", now), note("c", now)})
	require.Len(t, visible, 1)
	assert.Equal(t, "c", visible[0].ID)
}
