package ir

import "testing"

func TestCount(t *testing.T) {
	tests := []struct {
		name string
		node Node
		want int
	}{
		{"nil", nil, 0},
		{"literal", &Literal{Value: 1}, 1},
		{"empty seq", &Seq{}, 1},
		{"flat seq", &Seq{Items: []Node{&Literal{}, &Literal{}}}, 3},
		{"nested", &Seq{Items: []Node{
			&Quote{Body: &Literal{}},
			&Call{Selector: "f", Target: &Ref{Target: 1}, Args: []Node{&Var{Name: "x"}}},
		}}, 6},
	}
	for _, tt := range tests {
		if got := Count(tt.node); got != tt.want {
			t.Errorf("%s: Count = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestPrint(t *testing.T) {
	tests := []struct {
		node Node
		want string
	}{
		{&Seq{Items: []Node{&Literal{Value: 1}, &Literal{Value: 2}}}, "(seq 1 2)"},
		{&Call{Selector: "show", Target: &Ref{Target: 7}}, "(call show @7)"},
		{&Quote{Body: &Seq{}}, "'(seq)"},
		{&Var{Name: "speed"}, "speed"},
		{nil, "()"},
	}
	for _, tt := range tests {
		if got := Print(tt.node); got != tt.want {
			t.Errorf("Print = %q, want %q", got, tt.want)
		}
	}
}
