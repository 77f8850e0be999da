package system

import (
	"image"
	"sync"
	"sync/atomic"
)

// ImagePool переиспользует холсты *image.RGBA одного размера между
// компоновщиками, чтобы экспорт не нагружал GC.
type ImagePool struct {
	pools map[image.Rectangle]*sync.Pool
	mu    sync.RWMutex

	allocated atomic.Int64
	reused    atomic.Int64
}

// PoolStats counts pool traffic since start.
type PoolStats struct {
	Allocated int64
	Reused    int64
}

var globalPool = NewImagePool()

func NewImagePool() *ImagePool {
	return &ImagePool{pools: make(map[image.Rectangle]*sync.Pool)}
}

// GetImage берёт холст из общего пула. Содержимое не очищается.
func GetImage(rect image.Rectangle) *image.RGBA {
	return globalPool.Get(rect)
}

// PutImage возвращает холст в общий пул.
func PutImage(img *image.RGBA) {
	globalPool.Put(img)
}

func Stats() PoolStats {
	return globalPool.Stats()
}

func (p *ImagePool) Get(rect image.Rectangle) *image.RGBA {
	p.mu.RLock()
	pool, exists := p.pools[rect]
	p.mu.RUnlock()

	if !exists {
		p.mu.Lock()
		// Double check
		pool, exists = p.pools[rect]
		if !exists {
			pool = &sync.Pool{}
			p.pools[rect] = pool
		}
		p.mu.Unlock()
	}

	if img, ok := pool.Get().(*image.RGBA); ok {
		p.reused.Add(1)
		return img
	}
	p.allocated.Add(1)
	return image.NewRGBA(rect)
}

func (p *ImagePool) Put(img *image.RGBA) {
	if img == nil {
		return
	}
	p.mu.RLock()
	pool, exists := p.pools[img.Rect]
	p.mu.RUnlock()

	if exists {
		pool.Put(img)
	}
}

func (p *ImagePool) Stats() PoolStats {
	return PoolStats{Allocated: p.allocated.Load(), Reused: p.reused.Load()}
}
