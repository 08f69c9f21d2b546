package transaction_test

import (
	"github/chapool/go-batchpay/internal/test"
)

const (
	testKey    = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"
	testSender = "0x2c7536E3605D9C16a7a3D7b1898e529396a65c23"
	recipientA = "0x1111111111111111111111111111111111111111"
	recipientB = "0x2222222222222222222222222222222222222222"
	tokenAddr  = "0x8888888888888888888888888888888888888888"

	sendCoinPath  = "/api/v1/transaction/send-coin"
	sendTokenPath = "/api/v1/transaction/send-token"
)

func coinPayload() test.GenericPayload {
	return test.GenericPayload{
		"privateKey":      testKey,
		"receiverAddress": []string{recipientA, recipientB},
		"amount":          []string{"0.01", "0.02"},
	}
}

func tokenPayload() test.GenericPayload {
	p := coinPayload()
	p["tokenAddress"] = tokenAddr
	p["amount"] = []string{"10", "20"}
	return p
}
