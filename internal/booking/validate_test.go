package booking_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/museum-space/betlemi10-api/internal/booking"
)

func validRequest() booking.OrderRequest {
	return booking.OrderRequest{
		FirstName:  "Nino",
		LastName:   "Beridze",
		Phone:      "+995599123456",
		Amount:     "25",
		TicketType: "Adult Ticket",
	}
}

func fieldNames(errs []booking.FieldError) []string {
	names := make([]string, 0, len(errs))
	for _, fe := range errs {
		names = append(names, fe.Field)
	}
	return names
}

func TestValidateAccepts(t *testing.T) {
	v := booking.NewValidator()
	order, errs := v.Validate(validRequest())
	require.Empty(t, errs)
	require.Equal(t, "Nino", order.FirstName)
	require.Equal(t, "Beridze", order.LastName)
	require.Equal(t, "+995599123456", order.Phone)
	require.Equal(t, 25.0, order.Amount)
	require.Equal(t, "Adult Ticket", order.TicketType)
}

func TestValidatePhone(t *testing.T) {
	accepted := []string{
		"+995599123456",
		"995599123456",
		"599123456",
		"577 12 34 56", // formatting characters are stripped
	}
	rejected := []string{
		"",
		"12345",
		"+1 202 555 0100",
		"5991234567",   // ten digits
		"+99559912345", // eight digits after prefix
		"abcdefghi",
	}

	v := booking.NewValidator()
	for _, phone := range accepted {
		req := validRequest()
		req.Phone = phone
		_, errs := v.Validate(req)
		require.Emptyf(t, errs, "phone %q should be accepted", phone)
	}
	for _, phone := range rejected {
		req := validRequest()
		req.Phone = phone
		_, errs := v.Validate(req)
		require.NotEmptyf(t, errs, "phone %q should be rejected", phone)
		require.Contains(t, fieldNames(errs), "phone")
	}
}

func TestValidateAmountBoundaries(t *testing.T) {
	cases := []struct {
		amount string
		ok     bool
	}{
		{"0", false},
		{"-5", false},
		{"0.01", true},
		{"1000", true},
		{"1000.01", false},
		{"not-a-number", false},
		{"", false},
		{"999.999", true}, // rounds to 1000.00
	}

	v := booking.NewValidator()
	for _, tc := range cases {
		req := validRequest()
		req.Amount = tc.amount
		_, errs := v.Validate(req)
		if tc.ok {
			require.Emptyf(t, errs, "amount %q should be accepted", tc.amount)
		} else {
			require.NotEmptyf(t, errs, "amount %q should be rejected", tc.amount)
			require.Contains(t, fieldNames(errs), "amount")
		}
	}
}

func TestValidateAmountRounding(t *testing.T) {
	v := booking.NewValidator()
	req := validRequest()
	req.Amount = "25.555"
	order, errs := v.Validate(req)
	require.Empty(t, errs)
	require.Equal(t, 25.56, order.Amount)
}

func TestValidateStripsUnsafeCharacters(t *testing.T) {
	v := booking.NewValidator()
	req := validRequest()
	req.FirstName = `Ni<no>`
	req.LastName = `Be"ri'dze&`
	req.TicketType = `<script>Ticket</script>`
	order, errs := v.Validate(req)
	require.Empty(t, errs)
	require.Equal(t, "Nino", order.FirstName)
	require.Equal(t, "Beridze", order.LastName)
	require.NotContains(t, order.TicketType, "<")
	require.NotContains(t, order.TicketType, ">")
}

func TestValidateNameLength(t *testing.T) {
	v := booking.NewValidator()

	req := validRequest()
	req.FirstName = "N"
	_, errs := v.Validate(req)
	require.Contains(t, fieldNames(errs), "firstName")

	req = validRequest()
	req.LastName = ""
	_, errs = v.Validate(req)
	require.Contains(t, fieldNames(errs), "lastName")

	long := make([]byte, 101)
	for i := range long {
		long[i] = 'a'
	}
	req = validRequest()
	req.FirstName = string(long)
	_, errs = v.Validate(req)
	require.Contains(t, fieldNames(errs), "firstName")
}

func TestValidateDefaultTicketType(t *testing.T) {
	v := booking.NewValidator()
	req := validRequest()
	req.TicketType = ""
	order, errs := v.Validate(req)
	require.Empty(t, errs)
	require.Equal(t, "Museum Ticket", order.TicketType)
}

func TestValidateCollectsAllFieldErrors(t *testing.T) {
	v := booking.NewValidator()
	_, errs := v.Validate(booking.OrderRequest{Amount: "oops"})
	names := fieldNames(errs)
	require.Contains(t, names, "firstName")
	require.Contains(t, names, "lastName")
	require.Contains(t, names, "phone")
	require.Contains(t, names, "amount")
}
