package service

import (
	"errors"

	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

// SnapGateway membungkus snap.Client supaya checkout bisa dites tanpa jaringan.
type SnapGateway interface {
	CreateTransaction(req *snap.Request) (token, redirectURL string, err error)
}

type midtransSnap struct {
	client snap.Client
}

// NewSnapGateway: useProduction=false → Sandbox.
func NewSnapGateway(serverKey string, useProduction bool) SnapGateway {
	env := midtrans.Sandbox
	if useProduction {
		env = midtrans.Production
	}
	g := &midtransSnap{}
	g.client.New(serverKey, env)
	return g
}

func (g *midtransSnap) CreateTransaction(req *snap.Request) (string, string, error) {
	resp, mErr := g.client.CreateTransaction(req)
	// *midtrans.Error nil harus dicek sebelum dijadikan error interface
	if mErr != nil {
		return "", "", mErr
	}
	if resp == nil || resp.Token == "" {
		return "", "", errors.New("midtrans: snap token kosong")
	}
	return resp.Token, resp.RedirectURL, nil
}

type Customer struct {
	FirstName string
	LastName  string
	Email     string
}

func snapRequest(orderID string, amount int64, itemName, planCode string, cust Customer) *snap.Request {
	return &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderID,
			GrossAmt: amount,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: cust.FirstName,
			LName: cust.LastName,
			Email: cust.Email,
		},
		CreditCard: &snap.CreditCardDetails{Secure: true},
		Items: &[]midtrans.ItemDetails{{
			ID:       planCode,
			Price:    amount,
			Qty:      1,
			Name:     truncate(itemName, 50),
			Category: "subscription",
		}},
	}
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n]
}
