package usecase

import "gifts-buyer/internal/domain/model"

// MatchRange returns the first range covering price and remaining supply. Later ranges that
// overlap an earlier one are never reached.
func MatchRange(price, remaining int64, ranges []model.GiftRange) model.Match {
	for i, r := range ranges {
		if r.Covers(price, remaining) {
			return model.Match{
				Matched:    true,
				Index:      i,
				Quantity:   r.Quantity,
				Recipients: r.Recipients,
			}
		}
	}
	return model.Match{Index: -1, Recipients: []model.Recipient{}}
}
