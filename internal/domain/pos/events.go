package pos

import "sync"

// EventKind tipo de notificación emitida por el carrito y el checkout.
type EventKind string

const (
	EventCartChanged       EventKind = "cart_changed"
	EventStockInsufficient EventKind = "stock_insufficient"
	EventProductNotFound   EventKind = "product_not_found"
)

// Event notificación para la capa de presentación o reportes.
type Event struct {
	Kind      EventKind
	Index     int    // línea afectada (-1 si no aplica)
	ProductID int64
	Lookup    string // código buscado cuando Kind = EventProductNotFound
	Available int
	Requested int
	Message   string
}

// Notifier reparte eventos a suscriptores por canal. El envío no bloquea:
// si el buffer de un suscriptor está lleno el evento se descarta y se cuenta.
type Notifier struct {
	mu      sync.Mutex
	subs    map[int]chan Event
	next    int
	dropped uint64
}

// NewNotifier construye un Notifier sin suscriptores.
func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[int]chan Event)}
}

// Subscribe registra un suscriptor con el buffer indicado. La función devuelta
// cancela la suscripción y cierra el canal.
func (n *Notifier) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 0 {
		buffer = 0
	}
	ch := make(chan Event, buffer)
	n.mu.Lock()
	id := n.next
	n.next++
	n.subs[id] = ch
	n.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.subs, id)
			close(ch)
			n.mu.Unlock()
		})
	}
	return ch, cancel
}

// Publish entrega el evento a todos los suscriptores sin bloquear.
func (n *Notifier) Publish(e Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.subs {
		select {
		case ch <- e:
		default:
			n.dropped++
		}
	}
}

// Dropped cantidad de eventos descartados por suscriptores lentos.
func (n *Notifier) Dropped() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.dropped
}
