package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPage(t *testing.T) {
	tests := []struct {
		name      string
		number    int
		size      int
		total     int64
		content   []int
		wantPages int
		wantFirst bool
		wantLast  bool
		wantPrev  int
		wantNext  bool
		wantFinal int
	}{
		{"empty", 0, 10, 0, nil, 0, true, true, 0, false, 0},
		{"first of many", 0, 10, 200, make([]int, 10), 20, true, false, 0, true, 19},
		{"middle", 1, 10, 200, make([]int, 10), 20, false, false, 0, true, 19},
		{"last partial", 2, 10, 25, make([]int, 5), 3, false, true, 1, false, 2},
		{"beyond last", 5, 10, 25, nil, 3, false, true, 4, false, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPage(tt.content, tt.number, tt.size, tt.total)

			assert.NotNil(t, p.Content)
			assert.Equal(t, len(tt.content), p.NumberOfElements())
			assert.Equal(t, tt.wantPages, p.TotalPages)
			assert.Equal(t, tt.wantFirst, p.IsFirst())
			assert.Equal(t, tt.wantLast, p.IsLast())
			assert.Equal(t, tt.number > 0, p.HasPrevious())
			assert.Equal(t, tt.wantPrev, p.PreviousNumber())
			assert.Equal(t, tt.wantNext, p.HasNext())
			assert.Equal(t, tt.number+1, p.NextNumber())
			assert.Equal(t, tt.number+1, p.DisplayNumber())
			assert.Equal(t, tt.wantFinal, p.LastNumber())
		})
	}
}

func TestSocialType_RoleType(t *testing.T) {
	assert.Equal(t, "ROLE_GOOGLE", SocialGoogle.RoleType())
	assert.Equal(t, "ROLE_KAKAO", SocialKakao.RoleType())
	assert.Equal(t, "ROLE_FACEBOOK", SocialFacebook.RoleType())
}

func TestUser_IsSocial(t *testing.T) {
	assert.False(t, (&User{Name: "user1"}).IsSocial())
	assert.True(t, (&User{Name: "앨리스", SocialType: SocialKakao}).IsSocial())
}
