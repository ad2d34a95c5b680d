package bot

import "sync"

// chatQueue FIFO обновлений по чатам: на каждый чат с непустой очередью одна горутина
type chatQueue struct {
	handle func(Update)

	mu     sync.Mutex
	queues map[int64][]Update
	wg     sync.WaitGroup
}

func newChatQueue(handle func(Update)) *chatQueue {
	return &chatQueue{handle: handle, queues: make(map[int64][]Update)}
}

// Push ставит обновление в очередь его чата
func (q *chatQueue) Push(u Update) {
	id := u.ChatID()

	q.mu.Lock()
	defer q.mu.Unlock()
	pending, running := q.queues[id]
	q.queues[id] = append(pending, u)
	if running {
		return
	}
	q.wg.Add(1)
	go q.drain(id)
}

// Wait ждёт, пока все очереди опустеют
func (q *chatQueue) Wait() {
	q.wg.Wait()
}

func (q *chatQueue) drain(id int64) {
	defer q.wg.Done()
	for {
		q.mu.Lock()
		pending := q.queues[id]
		if len(pending) == 0 {
			delete(q.queues, id)
			q.mu.Unlock()
			return
		}
		u := pending[0]
		q.queues[id] = pending[1:]
		q.mu.Unlock()

		q.handle(u)
	}
}
