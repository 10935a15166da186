package subscription_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/flowkit/pkg/subscription"
)

func TestMirror_HasCoupon(t *testing.T) {
	t.Parallel()

	coupon := "off10"
	empty := ""

	assert.False(t, (&subscription.Mirror{}).HasCoupon())
	assert.False(t, (&subscription.Mirror{CouponID: &empty}).HasCoupon())
	assert.True(t, (&subscription.Mirror{CouponID: &coupon}).HasCoupon())
}
