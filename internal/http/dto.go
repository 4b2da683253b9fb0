package http

import (
	"reikningar/internal/assistant"
	"reikningar/internal/core"
)

type billDTO struct {
	ID        string  `json:"id"`
	Creditor  string  `json:"creditor"`
	Date      *string `json:"date"`
	Amount    *string `json:"amount"`
	Recurring bool    `json:"recurring"`
}

func toBillDTO(b core.Bill) billDTO {
	d := billDTO{ID: b.ID, Creditor: b.Creditor, Recurring: b.Recurring}
	if b.HasDate() {
		date := b.Date
		d.Date = &date
	}
	if b.Amount.Valid {
		amount := b.Amount.Decimal.String()
		d.Amount = &amount
	}
	return d
}

type transactionDTO struct {
	Hash     string  `json:"hash"`
	Date     string  `json:"date"`
	Creditor string  `json:"creditor"`
	Amount   string  `json:"amount"`
	Balance  *string `json:"balance"`
	Category *string `json:"category"`
}

func toTransactionDTO(t core.Transaction) transactionDTO {
	d := transactionDTO{
		Hash:     t.Hash,
		Date:     t.TransDate,
		Creditor: t.Creditor,
		Amount:   t.Amount.String(),
		Category: t.Category,
	}
	if t.Balance.Valid {
		balance := t.Balance.Decimal.String()
		d.Balance = &balance
	}
	return d
}

type billsResponse struct {
	Count int       `json:"count"`
	Bills []billDTO `json:"bills"`
}

type transactionsResponse struct {
	Count        int              `json:"count"`
	Transactions []transactionDTO `json:"transactions"`
}

type recurringRequest struct {
	Recurring *bool `json:"recurring"`
}

type createBillResponse struct {
	Bill     billDTO `json:"bill"`
	Inserted bool    `json:"inserted"`
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Answer string `json:"answer"`
	Turns  int    `json:"turns"`
}

type historyResponse struct {
	Turns []assistant.Turn `json:"turns"`
}

type viewsResponse struct {
	Views []string `json:"views"`
}
