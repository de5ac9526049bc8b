// Package allocation finds the profit-maximizing split of a day's tasks
// across suppliers under a capital budget and a demand ceiling.
package allocation

import (
	"errors"
	"fmt"
)

// ErrInvalidRequest is returned for negative demand, capacity or budget,
// or a non-positive unit price.
var ErrInvalidRequest = errors.New("invalid allocation request")

// Supplier is one company's offer for the day.
type Supplier struct {
	ID       string
	Capacity int
	Price    int // Cost per task to the publisher
	Profit   int // Publisher margin per task
}

// Request is the input to Solve. Suppliers are searched in slice order.
type Request struct {
	TasksNeeded int
	Budget      int
	Suppliers   []Supplier
}

// Result is the chosen plan. Plan holds an entry for every supplier,
// zero included.
type Result struct {
	Plan   map[string]int `json:"plan"`
	Profit int            `json:"profit"`
	Cost   int            `json:"cost"`
	Tasks  int            `json:"tasks"`
}

// Solve exhaustively searches integer quantities per supplier, each bounded
// by capacity and by what the remaining budget can buy, skipping any
// combination whose task total exceeds TasksNeeded. The highest profit wins;
// on a tie the incumbent is replaced only by a strictly smaller task total.
// Starting from the all-zero plan at profit 0, zero allocation is returned
// when nothing profitable fits.
//
// The search is O(prod(capacity_i)); fine for a handful of suppliers with
// capacities in the tens.
func Solve(req Request) (Result, error) {
	if err := req.validate(); err != nil {
		return Result{}, err
	}

	s := &search{
		req:     req,
		current: make([]int, len(req.Suppliers)),
		best:    make([]int, len(req.Suppliers)),
	}
	s.walk(0, req.Budget, 0, 0)

	res := Result{
		Plan:   make(map[string]int, len(req.Suppliers)),
		Profit: s.bestProfit,
		Tasks:  s.bestTasks,
	}
	for i, sup := range req.Suppliers {
		res.Plan[sup.ID] = s.best[i]
		res.Cost += s.best[i] * sup.Price
	}
	return res, nil
}

func (r Request) validate() error {
	if r.TasksNeeded < 0 {
		return fmt.Errorf("%w: tasks needed %d", ErrInvalidRequest, r.TasksNeeded)
	}
	if r.Budget < 0 {
		return fmt.Errorf("%w: budget %d", ErrInvalidRequest, r.Budget)
	}
	seen := make(map[string]bool, len(r.Suppliers))
	for _, sup := range r.Suppliers {
		if sup.Capacity < 0 {
			return fmt.Errorf("%w: supplier %s capacity %d", ErrInvalidRequest, sup.ID, sup.Capacity)
		}
		if sup.Price <= 0 {
			return fmt.Errorf("%w: supplier %s price %d", ErrInvalidRequest, sup.ID, sup.Price)
		}
		if seen[sup.ID] {
			return fmt.Errorf("%w: duplicate supplier %s", ErrInvalidRequest, sup.ID)
		}
		seen[sup.ID] = true
	}
	return nil
}

type search struct {
	req        Request
	current    []int
	best       []int
	bestProfit int
	bestTasks  int
}

// walk enumerates quantities for supplier i onward in ascending order,
// outermost supplier first.
func (s *search) walk(i, remaining, tasks, profit int) {
	if tasks > s.req.TasksNeeded {
		return
	}
	if i == len(s.req.Suppliers) {
		s.consider(tasks, profit)
		return
	}

	sup := s.req.Suppliers[i]
	limit := min(sup.Capacity, remaining/sup.Price)
	for q := 0; q <= limit; q++ {
		if tasks+q > s.req.TasksNeeded {
			// Larger q only adds tasks.
			break
		}
		s.current[i] = q
		s.walk(i+1, remaining-q*sup.Price, tasks+q, profit+q*sup.Profit)
	}
	s.current[i] = 0
}

func (s *search) consider(tasks, profit int) {
	if profit > s.bestProfit || (profit == s.bestProfit && tasks < s.bestTasks) {
		s.bestProfit = profit
		s.bestTasks = tasks
		copy(s.best, s.current)
	}
}
