package simulation

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/selvatuple/thumb-race-rally/internal/shared/types"
)

// Digest fingerprints the observable part of a snapshot: race id, phase
// and both lanes. The step counter and race clock are left out so an
// unchanged race hashes the same from one tick to the next.
func Digest(s types.RaceSnapshot) uint64 {
	buf := make([]byte, 0, 128)
	buf = append(buf, s.RaceID...)
	buf = append(buf, 0)
	buf = append(buf, s.Phase.Phase...)
	buf = append(buf, 0)
	buf = append(buf, s.Phase.Winner...)
	buf = append(buf, 0)
	for _, l := range s.Lanes {
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(l.Distance))
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(l.LateralPosition))
		buf = binary.LittleEndian.AppendUint64(buf, uint64(l.PushCount))
	}
	return xxhash.Sum64(buf)
}
