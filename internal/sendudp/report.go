package sendudp

import "time"

// Report is the outcome of one destination stream.
type Report struct {
	Target  string
	Sent    int
	Bytes   int64
	Elapsed time.Duration
	Err     error
}

// Rate returns datagrams per second over the stream's lifetime.
func (r *Report) Rate() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Sent) / r.Elapsed.Seconds()
}

// Results is a bag of per-destination reports, in target order; Failed()
// indicates any stream erred.
type Results struct {
	Reports []*Report
}

func (rs *Results) Failed() bool {
	for _, r := range rs.Reports {
		if r.Err != nil {
			return true
		}
	}
	return false
}

func (rs *Results) TotalSent() int {
	n := 0
	for _, r := range rs.Reports {
		n += r.Sent
	}
	return n
}
