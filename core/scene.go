package core

import (
	"sort"

	"github.com/google/uuid"
)

type LightId string
type OccluderId string
type MaskId string

// Scene is the per-frame input to the illumination pipeline: lights,
// occluders, skylight and the camera. Occluder mutation bumps a revision
// counter so the SDF builder can skip rebuilds on unchanged geometry.
type Scene struct {
	Camera   *Camera2D
	Skylight Skylight

	lights    map[LightId]*OmniLight
	occluders map[OccluderId]*Occluder
	masks     map[MaskId]*SkylightMask

	occluderRev uint64
}

func NewScene() *Scene {
	return &Scene{
		Camera:    NewCamera2D(),
		lights:    make(map[LightId]*OmniLight),
		occluders: make(map[OccluderId]*Occluder),
		masks:     make(map[MaskId]*SkylightMask),
	}
}

func (s *Scene) AddLight(l OmniLight) LightId {
	id := LightId(uuid.NewString())
	s.lights[id] = &l
	return id
}

func (s *Scene) Light(id LightId) *OmniLight { return s.lights[id] }

func (s *Scene) RemoveLight(id LightId) { delete(s.lights, id) }

func (s *Scene) AddOccluder(o Occluder) OccluderId {
	id := OccluderId(uuid.NewString())
	s.occluders[id] = &o
	s.occluderRev++
	return id
}

func (s *Scene) Occluder(id OccluderId) *Occluder { return s.occluders[id] }

func (s *Scene) RemoveOccluder(id OccluderId) {
	if _, ok := s.occluders[id]; ok {
		delete(s.occluders, id)
		s.occluderRev++
	}
}

// TouchOccluder marks an occluder mutated in place, forcing an SDF rebuild.
func (s *Scene) TouchOccluder(id OccluderId) {
	if _, ok := s.occluders[id]; ok {
		s.occluderRev++
	}
}

func (s *Scene) AddSkylightMask(m SkylightMask) MaskId {
	id := MaskId(uuid.NewString())
	s.masks[id] = &m
	return id
}

func (s *Scene) RemoveSkylightMask(id MaskId) { delete(s.masks, id) }

// OccluderRev is the current geometry revision. Equal revisions guarantee an
// identical occluder set.
func (s *Scene) OccluderRev() uint64 { return s.occluderRev }

// Lights returns the current light set in a deterministic order.
func (s *Scene) Lights() []OmniLight {
	ids := make([]string, 0, len(s.lights))
	for id := range s.lights {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)
	out := make([]OmniLight, 0, len(ids))
	for _, id := range ids {
		out = append(out, *s.lights[LightId(id)])
	}
	return out
}

// Occluders returns the current occluder set in a deterministic order.
func (s *Scene) Occluders() []Occluder {
	ids := make([]string, 0, len(s.occluders))
	for id := range s.occluders {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)
	out := make([]Occluder, 0, len(ids))
	for _, id := range ids {
		out = append(out, *s.occluders[OccluderId(id)])
	}
	return out
}

// SkylightMasks returns the current mask set in a deterministic order.
func (s *Scene) SkylightMasks() []SkylightMask {
	ids := make([]string, 0, len(s.masks))
	for id := range s.masks {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)
	out := make([]SkylightMask, 0, len(ids))
	for _, id := range ids {
		out = append(out, *s.masks[MaskId(id)])
	}
	return out
}
