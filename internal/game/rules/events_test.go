package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBusSubscribeTyped(t *testing.T) {
	bus := NewEventBus()

	moveCount := 0
	faintCount := 0

	handle1 := bus.SubscribeTyped(EventMove, func(e Event) {
		moveCount++
	})
	handle2 := bus.SubscribeTyped(EventFaint, func(e Event) {
		faintCount++
	})

	bus.Publish(NewEvent(EventMove, "p1a: Pikachu", "Thunderbolt", "p2a: Gyarados"))
	if moveCount != 1 {
		t.Fatalf("expected move count 1, got %d", moveCount)
	}
	if faintCount != 0 {
		t.Fatalf("expected faint count 0, got %d", faintCount)
	}

	bus.Publish(NewEvent(EventFaint, "p2a: Gyarados"))
	if faintCount != 1 {
		t.Fatalf("expected faint count 1, got %d", faintCount)
	}

	bus.Unsubscribe(handle1)
	bus.Publish(NewEvent(EventMove, "p1a: Pikachu", "Tackle", "p2a: Gyarados"))
	if moveCount != 1 {
		t.Fatalf("expected move count still 1 after unsubscribe, got %d", moveCount)
	}

	bus.Unsubscribe(handle2)
	bus.Publish(NewEvent(EventFaint, "p1a: Pikachu"))
	if faintCount != 1 {
		t.Fatalf("expected faint count still 1 after unsubscribe, got %d", faintCount)
	}
}

func TestEventBusPublishOrder(t *testing.T) {
	bus := NewEventBus()
	var seen []string
	bus.Subscribe(func(e Event) { seen = append(seen, "a:"+string(e.Type)) })
	bus.Subscribe(func(e Event) { seen = append(seen, "b:"+string(e.Type)) })
	assert.Equal(t, -1, bus.Subscribe(nil))

	bus.PublishBatch([]Event{NewEvent(EventTurn, "1"), NewEvent(EventUpkeep)})
	assert.Equal(t, []string{"a:turn", "b:turn", "a:upkeep", "b:upkeep"}, seen)
}

func TestEventString(t *testing.T) {
	tests := []struct {
		name  string
		event Event
		want  string
	}{
		{"move", NewEvent(EventMove, "p1a: Pikachu", "Thunderbolt", "p2a: Gyarados"), "|move|p1a: Pikachu|Thunderbolt|p2a: Gyarados"},
		{"no args", NewEvent(EventUpkeep), "|upkeep"},
		{"spacer", NewEvent(EventSpacer), "|"},
		{"minor", NewEvent(EventDamage, "p2a: Gyarados", "120/300"), "|-damage|p2a: Gyarados|120/300"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.event.String())
		})
	}
}

func TestParseEvent(t *testing.T) {
	evt, err := ParseEvent("|-hitcount|p2a: Snorlax|2")
	require.NoError(t, err)
	assert.Equal(t, EventHitCount, evt.Type)
	assert.Equal(t, []string{"p2a: Snorlax", "2"}, evt.Args)
	assert.Equal(t, "|-hitcount|p2a: Snorlax|2", evt.String())

	_, err = ParseEvent("move|x")
	require.Error(t, err)
}
