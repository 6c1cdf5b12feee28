package impl

import (
	"sort"
	"sync"
	"testing"
)

func snapshotIDs(r *registry, topic string) []string {
	var ids []string
	for _, h := range r.Snapshot(topic) {
		ids = append(ids, h.ID())
	}
	sort.Strings(ids)
	return ids
}

func Test_registry_membership(t *testing.T) {
	tests := []struct {
		name  string
		joins []string
		leave []string
		want  []string
	}{
		{
			name:  "join two",
			joins: []string{"a", "b"},
			want:  []string{"a", "b"},
		},
		{
			name:  "join twice is one membership",
			joins: []string{"a", "a"},
			want:  []string{"a"},
		},
		{
			name:  "leave removes",
			joins: []string{"a", "b"},
			leave: []string{"a"},
			want:  []string{"b"},
		},
		{
			name:  "leave twice is a no-op",
			joins: []string{"a", "b"},
			leave: []string{"a", "a"},
			want:  []string{"b"},
		},
		{
			name:  "leave without join is a no-op",
			joins: []string{"b"},
			leave: []string{"a"},
			want:  []string{"b"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			handles := map[string]*handle{}
			for _, id := range tt.joins {
				if _, ok := handles[id]; !ok {
					handles[id] = NewHandle(id, 0)
				}
				r.Join("blog-9", handles[id])
			}
			for _, id := range tt.leave {
				h, ok := handles[id]
				if !ok {
					h = NewHandle(id, 0)
				}
				r.Leave("blog-9", h)
			}
			got := snapshotIDs(r, "blog-9")
			sort.Strings(tt.want)
			if len(got) != len(tt.want) {
				t.Fatalf("Snapshot() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("Snapshot() = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func Test_registry_broadcastToEmptyTopic(t *testing.T) {
	r := NewRegistry()
	// must not panic nor block
	r.Broadcast("nobody-here", "hello")
	if got := r.Snapshot("nobody-here"); got != nil {
		t.Errorf("Snapshot() = %v, want nil", got)
	}
}

func Test_registry_broadcastDelivers(t *testing.T) {
	r := NewRegistry()
	a := NewHandle("a", 0)
	b := NewHandle("b", 0)
	r.Join("alerts", a)
	r.Join("alerts", b)

	r.Broadcast("alerts", "pending")

	for _, h := range []*handle{a, b} {
		select {
		case msg := <-h.Listen():
			if msg != "pending" {
				t.Errorf("handle %v received %v, want pending", h.ID(), msg)
			}
		default:
			t.Errorf("handle %v received nothing", h.ID())
		}
	}
}

func Test_registry_slowConsumerDoesNotBlockOthers(t *testing.T) {
	r := NewRegistry()
	slow := NewHandle("slow", 1)
	fast := NewHandle("fast", 8)
	r.Join("blog-1", slow)
	r.Join("blog-1", fast)

	// saturate the slow handle's queue
	if ok := slow.TrySend("filler"); !ok {
		t.Fatal("TrySend() on empty queue = false, want true")
	}

	done := make(chan struct{})
	go func() {
		r.Broadcast("blog-1", "hi")
		close(done)
	}()
	<-done // must complete without blocking on the saturated handle

	select {
	case msg := <-fast.Listen():
		if msg != "hi" {
			t.Errorf("fast received %v, want hi", msg)
		}
	default:
		t.Error("fast subscriber received nothing")
	}

	// slow still only has the filler queued
	if got := <-slow.Listen(); got != "filler" {
		t.Errorf("slow head of queue = %v, want filler", got)
	}
	select {
	case msg := <-slow.Listen():
		t.Errorf("slow received dropped message %v", msg)
	default:
	}
}

func Test_registry_closedHandleNeverReceives(t *testing.T) {
	r := NewRegistry()
	a := NewHandle("a", 0)
	b := NewHandle("b", 0)
	r.Join("blog-2", a)
	r.Join("blog-2", b)

	r.Leave("blog-2", a)
	a.Close()

	r.Broadcast("blog-2", "after-leave")

	select {
	case msg := <-a.Listen():
		t.Errorf("left handle received %v", msg)
	default:
	}
	select {
	case <-b.Listen():
	default:
		t.Error("remaining handle received nothing")
	}
}

func Test_registry_emptyTopicIsReleased(t *testing.T) {
	r := NewRegistry()
	h := NewHandle("a", 0)
	r.Join("blog-3", h)
	r.Leave("blog-3", h)

	metric, ok := r.GetMetric().(map[string]any)
	if !ok {
		t.Fatalf("GetMetric() = %T, want map", r.GetMetric())
	}
	if metric["n_topic"] != 0 {
		t.Errorf("n_topic = %v, want 0", metric["n_topic"])
	}
}

func Test_registry_topicsDoNotContend(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			topicName := string(rune('a' + n))
			for j := 0; j < 200; j++ {
				h := NewHandle(topicName, 4)
				r.Join(topicName, h)
				r.Broadcast(topicName, j)
				r.Leave(topicName, h)
				h.Close()
			}
		}(i)
	}
	wg.Wait()

	metric := r.GetMetric().(map[string]any)
	if metric["n_subscription"] != 0 {
		t.Errorf("n_subscription = %v, want 0", metric["n_subscription"])
	}
	if metric["n_topic"] != 0 {
		t.Errorf("n_topic = %v, want 0", metric["n_topic"])
	}
}

func Test_registry_concurrentJoinLeaveSameTopic(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			h := NewHandle(string(rune('a'+n)), 4)
			for j := 0; j < 100; j++ {
				r.Join("contended", h)
				r.Broadcast("contended", j)
				r.Leave("contended", h)
			}
		}(i)
	}
	wg.Wait()

	if got := r.Snapshot("contended"); len(got) != 0 {
		t.Errorf("Snapshot() after all left = %v members, want 0", len(got))
	}
}
