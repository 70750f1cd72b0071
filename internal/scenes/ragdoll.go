package scenes

import (
	"math/rand"

	"github.com/san-kum/vxsim/internal/verlet"
)

var ragdollBody = [][2]float64{
	// head
	{480, 10}, {520, 10}, {480, 60}, {520, 60},
	// neck base
	{500, 80},
	// torso
	{440, 80}, {560, 80}, {470, 200}, {530, 200},
	// arms
	{370, 130}, {420, 120}, {320, 200}, {370, 160},
	{630, 130}, {580, 120}, {680, 200}, {630, 160},
	// legs
	{450, 330}, {490, 260}, {460, 440}, {475, 360},
	{550, 330}, {510, 260}, {540, 440}, {525, 360},
}

// Bindings and scaffolding hold joints in shape without colliding.
var ragdollBindings = [][2]float64{
	{390, 140}, {610, 140},
	{480, 320}, {520, 320},
	{370, 80}, {310, 110}, {630, 80}, {690, 110},
	{390, 180}, {370, 190}, {610, 180}, {630, 190},
	{490, 350}, {480, 390}, {510, 350}, {520, 390},
	{410, 240}, {370, 280}, {590, 240}, {630, 280},
	{500, 310},
}

func show(a, b int) link { return link{a: a, b: b} }
func hide(a, b int) link { return link{a: a, b: b, hidden: true} }

var ragdollLinks = []link{
	// head
	show(1, 2), show(1, 3), show(2, 4),
	hide(1, 4), hide(2, 3), hide(3, 4),
	hide(1, 7), hide(1, 6), hide(1, 9), hide(2, 6),
	hide(2, 7), hide(2, 8), hide(3, 6), hide(4, 7),
	hide(6, 9), hide(7, 8),
	// neck
	hide(1, 5), hide(2, 5),
	// shoulders
	show(3, 7), show(4, 6),
	// torso
	hide(6, 5), hide(6, 7), show(6, 8), hide(5, 7),
	hide(5, 8), hide(5, 9), show(7, 9), show(8, 9),
	// arms
	show(6, 10), show(6, 11), show(10, 11), show(10, 12), show(10, 13), show(12, 13),
	show(7, 14), show(7, 15), show(14, 15), show(14, 16), show(14, 17), show(16, 17),
	// legs
	show(8, 18), show(8, 19), show(18, 19), show(18, 20), show(18, 21), show(20, 21),
	show(9, 22), show(9, 23), show(22, 23), show(22, 24), show(22, 25), show(24, 25),
	// forearm and lower leg bindings
	hide(26, 11), hide(26, 13), hide(27, 15), hide(27, 17),
	hide(28, 19), hide(28, 21), hide(29, 23), hide(29, 25),
	// arm scaffolding
	hide(30, 6), hide(30, 8), hide(30, 31), hide(31, 10),
	hide(32, 7), hide(32, 9), hide(32, 33), hide(33, 14),
	hide(34, 6), hide(34, 10), hide(34, 35), hide(35, 12),
	hide(36, 7), hide(36, 14), hide(36, 37), hide(37, 16),
	// leg scaffolding
	hide(38, 8), hide(38, 16), hide(38, 39), hide(39, 20),
	hide(40, 9), hide(40, 22), hide(40, 41), hide(41, 24),
	hide(42, 6), hide(42, 8), hide(42, 43), hide(43, 18),
	hide(44, 7), hide(44, 9), hide(44, 45), hide(45, 22),
	hide(46, 19), hide(46, 23),
}

var ragdollSkins = [][]int{
	{1, 2, 4, 6, 8, 9, 7, 3, 1},
	{8, 18, 20, 21, 18, 19, 8},
	{9, 23, 22, 25, 24, 22, 9},
	{6, 10, 12, 13, 10, 11, 6},
	{7, 14, 16, 17, 14, 15, 7},
}

// Ragdoll is a jointed figure blown around a box by the breeze.
type Ragdoll struct {
	Style verlet.Style

	hips [2]*verlet.Point
}

func NewRagdoll() *Ragdoll {
	return &Ragdoll{Style: verlet.Style{Fill: "green", Outline: "red", Thickness: 10}}
}

func (r *Ragdoll) Name() string        { return "ragdoll" }
func (r *Ragdoll) Description() string { return "jointed rag doll in a breezy box" }

func (r *Ragdoll) World() verlet.Config {
	cfg := box(1000, 1000)
	cfg.Gravity = 0.25
	cfg.Rigidity = 20
	cfg.SkidLoss = 0.5
	cfg.Breeze = 8
	return cfg
}

func (r *Ragdoll) Build(e *verlet.Engine, rng *rand.Rand) error {
	body, err := addPoints(e, ragdollBody, verlet.Material)
	if err != nil {
		return err
	}
	if _, err := addPoints(e, ragdollBindings, verlet.Immaterial); err != nil {
		return err
	}
	first := body[0].ID - 1
	shifted := make([]link, len(ragdollLinks))
	for i, l := range ragdollLinks {
		shifted[i] = link{a: l.a + first, b: l.b + first, hidden: l.hidden}
	}
	if err := addLinks(e, shifted); err != nil {
		return err
	}
	for _, outline := range ragdollSkins {
		ids := make([]int, len(outline))
		for i, id := range outline {
			ids[i] = id + first
		}
		if _, err := e.AddSkin(ids, r.Style); err != nil {
			return err
		}
	}

	nudge(body[5], verlet.Vec3{float64(randInt(rng, -50, 50)), 0, 0})
	nudge(body[8], verlet.Vec3{float64(randInt(rng, -50, 50)), 0, 0})
	nudge(body[6], verlet.Vec3{0, float64(randInt(rng, -50, 50)), 0})
	nudge(body[7], verlet.Vec3{0, float64(randInt(rng, -50, 50)), 0})
	r.hips = [2]*verlet.Point{body[7], body[8]}
	return nil
}

func (r *Ragdoll) Step(*verlet.Engine) error { return nil }

// GrabRadius is how close a pointer must be to a body point to pick it up:
// the current width of the hips.
func (r *Ragdoll) GrabRadius(e *verlet.Engine) float64 {
	if r.hips[0] == nil {
		return 0
	}
	return e.Distance(r.hips[0], r.hips[1])
}
