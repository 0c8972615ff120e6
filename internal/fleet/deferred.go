package fleet

import (
	"context"
	"encoding/json"
	"sync"
)

// deferred - ресурс флота, загружаемый один раз при первом обращении.
// Успешный результат хранится до конца жизни Fleet, ошибка не запоминается.
type deferred[T any] struct {
	mu    sync.Mutex
	done  bool
	raw   json.RawMessage
	value T
}

type loader[T any] func(ctx context.Context) (json.RawMessage, T, error)

func (d *deferred[T]) get(ctx context.Context, load loader[T]) (json.RawMessage, T, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.done {
		return d.raw, d.value, nil
	}

	raw, value, err := load(ctx)
	if err != nil {
		var zero T
		return nil, zero, err
	}

	d.raw, d.value, d.done = raw, value, true
	return raw, value, nil
}

// loaded сообщает, был ли ресурс уже получен
func (d *deferred[T]) loaded() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.done
}

// peek возвращает значение, если ресурс уже получен, без загрузки
func (d *deferred[T]) peek() (T, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.value, d.done
}
