// Package payment prices accepted bids and totals worker earnings.
package payment

import (
	"math"
	"time"
)

// ServiceFeeRate is charged to the customer on top of the accepted bid.
const ServiceFeeRate = 0.05

const Currency = "PKR"

type Method string

const (
	MethodCash Method = "cash"
	MethodCard Method = "card"
)

var Methods = []Method{MethodCash, MethodCard}

type Summary struct {
	Subtotal   float64  `json:"subtotal"`
	ServiceFee float64  `json:"service_fee"`
	Total      float64  `json:"total"`
	Currency   string   `json:"currency"`
	Methods    []Method `json:"methods"`
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Summarize prices a bid for the customer.
func Summarize(bidPrice float64) Summary {
	fee := round2(bidPrice * ServiceFeeRate)
	return Summary{
		Subtotal:   round2(bidPrice),
		ServiceFee: fee,
		Total:      round2(bidPrice + fee),
		Currency:   Currency,
		Methods:    Methods,
	}
}

// Payout is one completed job's accepted bid.
type Payout struct {
	TaskID      string    `json:"task_id"`
	Title       string    `json:"title"`
	Amount      float64   `json:"amount"`
	CompletedAt time.Time `json:"completed_at"`
}

type Earnings struct {
	Total         float64  `json:"total"`
	ThisMonth     float64  `json:"this_month"`
	LastMonth     float64  `json:"last_month"`
	CompletedJobs int      `json:"completed_jobs"`
	Currency      string   `json:"currency"`
	History       []Payout `json:"history"`
}

// SummarizeEarnings buckets payouts by calendar month relative to now.
func SummarizeEarnings(payouts []Payout, now time.Time) Earnings {
	now = now.UTC()
	thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	lastMonth := thisMonth.AddDate(0, -1, 0)

	e := Earnings{Currency: Currency, History: payouts}
	if e.History == nil {
		e.History = []Payout{}
	}

	for _, p := range payouts {
		e.Total += p.Amount
		e.CompletedJobs++

		at := p.CompletedAt.UTC()
		switch {
		case !at.Before(thisMonth):
			e.ThisMonth += p.Amount
		case !at.Before(lastMonth):
			e.LastMonth += p.Amount
		}
	}

	e.Total = round2(e.Total)
	e.ThisMonth = round2(e.ThisMonth)
	e.LastMonth = round2(e.LastMonth)
	return e
}
