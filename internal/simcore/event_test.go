package simcore

import "testing"

func TestEventQueue_OrdersByTimeThenSeq(t *testing.T) {
	q := NewEventQueue()
	q.Push(Event{Kind: EventArrival, Time: 5, RequestType: "c"})
	q.Push(Event{Kind: EventArrival, Time: 1, RequestType: "a"})
	q.Push(Event{Kind: EventArrival, Time: 1, RequestType: "b"})

	var order []string
	for !q.Empty() {
		e, _ := q.Pop()
		order = append(order, e.RequestType)
	}
	want := []string{"a", "b", "c"}
	for i, w := range want {
		if order[i] != w {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestEventQueue_PeekDoesNotRemove(t *testing.T) {
	q := NewEventQueue()
	q.Push(Event{Time: 1})
	if _, ok := q.Peek(); !ok {
		t.Fatal("Peek() on non-empty queue returned false")
	}
	if q.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 after Peek", q.Len())
	}
}

func TestEventQueue_EmptyPop(t *testing.T) {
	q := NewEventQueue()
	if _, ok := q.Pop(); ok {
		t.Fatal("Pop() on empty queue returned ok=true")
	}
	if !q.Empty() {
		t.Fatal("Empty() = false on a queue with no pushes")
	}
}

func TestEventQueue_SeqAssignedAtPush(t *testing.T) {
	q := NewEventQueue()
	q.Push(Event{Time: 1})
	q.Push(Event{Time: 1})
	first, _ := q.Pop()
	second, _ := q.Pop()
	if first.Seq >= second.Seq {
		t.Fatalf("Seq not monotonically increasing in enqueue order: %d then %d", first.Seq, second.Seq)
	}
}
