package harvest

import (
	"github.com/etnz/harvest/date"
)

// Lot is an open, possibly partially sold, purchase of a security.
type Lot struct {
	Date      date.Date // acquisition date
	Quantity  Quantity
	UnitCost  Money
	TotalCost Money // what remains of the purchase cost, fees included
}

func (l Lot) MarshalJSON() ([]byte, error) {
	var w jsonObject
	w.Append("date", l.Date)
	w.Append("quantity", l.Quantity)
	w.Append("unitCost", l.UnitCost)
	w.Append("totalCost", l.TotalCost)
	return w.MarshalJSON()
}

// Lots is the queue of open lots of one ticker, oldest first.
type Lots []Lot

// Quantity returns the total quantity held in the lots.
func (l Lots) Quantity() Quantity {
	var q Quantity
	for _, lot := range l {
		q = q.Add(lot.Quantity)
	}
	return q
}

// Cost returns the total remaining cost of the lots.
func (l Lots) Cost() Money {
	var c Money
	for _, lot := range l {
		c = c.Add(lot.TotalCost)
	}
	return c
}

// push returns the queue with lot appended at the tail.
func (l Lots) push(lot Lot) Lots {
	return append(l, lot)
}

// fifoSell consumes quantityToSell from the head of the queue.
//
// It returns the remaining queue, the cost of the consumed shares, the
// consumed lot portions and the quantity that could not be matched because
// the queue ran out. The receiver is never modified: a partially consumed
// head lot is replaced by an updated copy in the returned queue.
func (l Lots) fifoSell(quantityToSell Quantity) (remaining Lots, cost Money, consumed Lots, unsatisfied Quantity) {
	i := 0
	var head *Lot
	for ; i < len(l) && quantityToSell.IsPositive(); i++ {
		currentLot := l[i]
		if currentLot.Quantity.LessThanOrEqual(quantityToSell) {
			// Full sale of this lot
			cost = cost.Add(currentLot.TotalCost)
			quantityToSell = quantityToSell.Sub(currentLot.Quantity)
			consumed = append(consumed, currentLot)
			continue
		}
		// Partial sale from this lot
		portionCost := currentLot.UnitCost.Mul(quantityToSell)
		cost = cost.Add(portionCost)
		consumed = append(consumed, Lot{
			Date:      currentLot.Date,
			Quantity:  quantityToSell,
			UnitCost:  currentLot.UnitCost,
			TotalCost: portionCost,
		})
		head = &Lot{
			Date:      currentLot.Date,
			Quantity:  currentLot.Quantity.Sub(quantityToSell),
			UnitCost:  currentLot.UnitCost,
			TotalCost: currentLot.TotalCost.Sub(portionCost),
		}
		quantityToSell = Q(0)
		i++
		break
	}

	remaining = make(Lots, 0, len(l)-i+1)
	if head != nil {
		remaining = append(remaining, *head)
	}
	remaining = append(remaining, l[i:]...)
	return remaining, cost, consumed, quantityToSell
}
