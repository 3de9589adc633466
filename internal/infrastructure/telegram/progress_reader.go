package telegram

import (
	"io"

	"github.com/easayliu/tg-autorename/internal/application/contracts"
)

// progressReader 统计读取字节数并回调进度
type progressReader struct {
	r     io.Reader
	total int64
	done  int64
	fn    contracts.ProgressFunc
}

func newProgressReader(r io.Reader, total int64, fn contracts.ProgressFunc) io.Reader {
	if fn == nil {
		return r
	}
	return &progressReader{r: r, total: total, fn: fn}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.done += int64(n)
		p.fn(p.done, p.total)
	}
	return n, err
}
