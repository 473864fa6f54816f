package unipay_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/museum-space/betlemi10-api/internal/unipay"
)

func TestVerifySignature(t *testing.T) {
	secret := "shared-secret"
	body := []byte(`{"MerchantOrderID":"MS-1","Status":"Success"}`)
	sig := unipay.ComputeSignature(secret, body)

	require.True(t, unipay.VerifySignature(secret, body, sig))
	require.True(t, unipay.VerifySignature(secret, body, " "+sig+" "))
}

func TestVerifySignatureReject(t *testing.T) {
	secret := "shared-secret"
	body := []byte(`{"MerchantOrderID":"MS-1"}`)
	sig := unipay.ComputeSignature(secret, body)

	require.False(t, unipay.VerifySignature(secret, body, ""))
	require.False(t, unipay.VerifySignature("", body, sig))
	require.False(t, unipay.VerifySignature(secret, body, "not-hex"))
	require.False(t, unipay.VerifySignature(secret, body, "deadbeef"))
	require.False(t, unipay.VerifySignature(secret, []byte(`{"tampered":true}`), sig))
	require.False(t, unipay.VerifySignature("other-secret", body, sig))
}
