package rules

import (
	"fmt"
	"strings"
	"sync"
)

// EventType is the protocol tag of an observable battle event.
type EventType string

const (
	// Battle setup
	EventPlayer   EventType = "player"
	EventGameType EventType = "gametype"
	EventGen      EventType = "gen"
	EventTeamSize EventType = "teamsize"
	EventRule     EventType = "rule"
	EventStart    EventType = "start"
	EventTurn     EventType = "turn"
	EventUpkeep   EventType = "upkeep"
	EventSpacer   EventType = ""

	// Terminal
	EventWin EventType = "win"
	EventTie EventType = "tie"

	// Major actions
	EventMove   EventType = "move"
	EventSwitch EventType = "switch"
	EventDrag   EventType = "drag"
	EventCant   EventType = "cant"
	EventFaint  EventType = "faint"

	// Minor actions
	EventFail           EventType = "-fail"
	EventMiss           EventType = "-miss"
	EventNoTarget       EventType = "-notarget"
	EventImmune         EventType = "-immune"
	EventDamage         EventType = "-damage"
	EventHeal           EventType = "-heal"
	EventSetHP          EventType = "-sethp"
	EventStatus         EventType = "-status"
	EventCureStatus     EventType = "-curestatus"
	EventBoost          EventType = "-boost"
	EventUnboost        EventType = "-unboost"
	EventWeather        EventType = "-weather"
	EventFieldStart     EventType = "-fieldstart"
	EventFieldEnd       EventType = "-fieldend"
	EventSideStart      EventType = "-sidestart"
	EventSideEnd        EventType = "-sideend"
	EventVolatileStart  EventType = "-start"
	EventVolatileEnd    EventType = "-end"
	EventCrit           EventType = "-crit"
	EventSuperEffective EventType = "-supereffective"
	EventResisted       EventType = "-resisted"
	EventItem           EventType = "-item"
	EventEndItem        EventType = "-enditem"
	EventAbility        EventType = "-ability"
	EventActivate       EventType = "-activate"
	EventSingleTurn     EventType = "-singleturn"
	EventPrepare        EventType = "-prepare"
	EventHitCount       EventType = "-hitcount"
	EventOHKO           EventType = "-ohko"
	EventHint           EventType = "-hint"
	EventMessage        EventType = "message"
	EventDebug          EventType = "debug"
)

// Event is one observable line of the battle log.
type Event struct {
	Type EventType
	Args []string
	Turn int // Turn the event was emitted in
	Seq  int // Position in the battle log
}

// NewEvent creates an event with the given protocol arguments.
func NewEvent(eventType EventType, args ...string) Event {
	return Event{Type: eventType, Args: args}
}

// String renders the event as a protocol line, e.g. "|move|p1a: Pikachu|Thunderbolt|p2a: Gyarados".
func (e Event) String() string {
	if e.Type == EventSpacer && len(e.Args) == 0 {
		return "|"
	}
	var b strings.Builder
	b.WriteByte('|')
	b.WriteString(string(e.Type))
	for _, arg := range e.Args {
		b.WriteByte('|')
		b.WriteString(arg)
	}
	return b.String()
}

// ParseEvent parses a protocol line produced by Event.String.
func ParseEvent(line string) (Event, error) {
	if !strings.HasPrefix(line, "|") {
		return Event{}, fmt.Errorf("invalid event line %q", line)
	}
	parts := strings.Split(line[1:], "|")
	evt := Event{Type: EventType(parts[0])}
	if len(parts) > 1 {
		evt.Args = parts[1:]
	}
	return evt, nil
}

// Listener reacts to a published event.
type Listener func(Event)

type subscription struct {
	handle   int
	only     EventType
	filtered bool
	fn       Listener
}

// EventBus delivers battle events to subscribers synchronously, in the
// order they subscribed.
type EventBus struct {
	mu   sync.RWMutex
	subs []subscription
	next int
}

// NewEventBus returns a bus with no subscribers.
func NewEventBus() *EventBus {
	return &EventBus{}
}

// Subscribe registers fn for every event. It returns a handle for
// Unsubscribe, or -1 when fn is nil.
func (bus *EventBus) Subscribe(fn Listener) int {
	return bus.add(subscription{fn: fn})
}

// SubscribeTyped registers fn for events of one type only.
func (bus *EventBus) SubscribeTyped(eventType EventType, fn Listener) int {
	return bus.add(subscription{only: eventType, filtered: true, fn: fn})
}

func (bus *EventBus) add(sub subscription) int {
	if sub.fn == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	sub.handle = bus.next
	bus.next++
	bus.subs = append(bus.subs, sub)
	return sub.handle
}

// Unsubscribe removes the subscription with the given handle.
func (bus *EventBus) Unsubscribe(handle int) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	for i, sub := range bus.subs {
		if sub.handle == handle {
			bus.subs = append(bus.subs[:i:i], bus.subs[i+1:]...)
			return
		}
	}
}

// Publish hands event to each matching subscriber. Listeners may
// subscribe or unsubscribe while being called; the change applies from
// the next event.
func (bus *EventBus) Publish(event Event) {
	bus.mu.RLock()
	subs := bus.subs
	bus.mu.RUnlock()
	for _, sub := range subs {
		if !sub.filtered || sub.only == event.Type {
			sub.fn(event)
		}
	}
}

// PublishBatch publishes events in order.
func (bus *EventBus) PublishBatch(events []Event) {
	for _, event := range events {
		bus.Publish(event)
	}
}
