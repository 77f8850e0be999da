package system

import (
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// Budget — измеренные ресурсы машины.
type Budget struct {
	Cores     int
	Available uint64
}

// Probe читает число физических ядер и доступную память. Если данных нет,
// используется runtime.NumCPU и неизвестная (нулевая) память.
func Probe() Budget {
	b := Budget{Cores: runtime.NumCPU()}
	if n, err := cpu.Counts(false); err == nil && n > 0 {
		b.Cores = n
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		b.Available = vm.Available
	}
	return b
}

// Workers решает, сколько воркеров экспорта запускать. Явный запрос важнее
// числа ядер; затем результат ограничивается так, чтобы холсты всех
// воркеров помещались в половину доступной памяти.
func (b Budget) Workers(requested int, bytesPerWorker uint64) int {
	n := requested
	if n <= 0 {
		n = b.Cores
	}
	if b.Available > 0 && bytesPerWorker > 0 {
		fit := int(b.Available / 2 / bytesPerWorker)
		if fit < n {
			n = fit
		}
	}
	if n < 1 {
		n = 1
	}
	return n
}

// Workers is Probe().Workers.
func Workers(requested int, bytesPerWorker uint64) int {
	return Probe().Workers(requested, bytesPerWorker)
}
