package budget

import "github.com/inklyn/docchat/internal/core/domain"

// selectHistory walks turns newest first and stops at the first turn that
// does not fit whole. A turn is never split, and the kept window is a
// contiguous suffix of the history so the conversation stays coherent.
// The returned slice is in chronological order.
func (b *Budgeter) selectHistory(sess *domain.Session, alloc int) ([]domain.ConversationTurn, int) {
	if alloc <= 0 {
		return nil, 0
	}

	cost := 0
	keepFrom := len(sess.Turns)
	for i := len(sess.Turns) - 1; i >= 0; i-- {
		c := b.turnCost(sess.Turns[i])
		if cost+c > alloc {
			break
		}
		cost += c
		keepFrom = i
	}

	if keepFrom == len(sess.Turns) {
		return nil, 0
	}
	out := make([]domain.ConversationTurn, len(sess.Turns)-keepFrom)
	copy(out, sess.Turns[keepFrom:])
	return out, cost
}

func (b *Budgeter) turnCost(t domain.ConversationTurn) int {
	return b.sizer.Size(t.Text) + b.cfg.MessageOverhead
}
