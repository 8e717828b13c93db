package queue

import "time"

// taskItem 入堆的任务条目
// sequence 由提交顺序单调分配，保证同优先级严格 FIFO
type taskItem struct {
	id         string
	task       Task
	priority   Priority
	sequence   uint64
	enqueuedAt time.Time
}

// taskHeap 实现 container/heap 接口的最大堆：
// 高优先级先出，同优先级按 sequence 升序（先提交先出）
type taskHeap []*taskItem

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority > h[j].priority
	}
	return h[i].sequence < h[j].sequence
}

func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

func (h *taskHeap) Push(x any) {
	*h = append(*h, x.(*taskItem))
}

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil // 释放引用
	*h = old[:n-1]
	return item
}
