package generators

import (
	"math/rand"

	"github.com/go-faker/faker/v4"
)

var FirstNames = []string{
	"James", "Mary", "John", "Patricia", "Robert", "Jennifer", "Michael", "Linda",
	"William", "Barbara", "David", "Elizabeth", "Richard", "Susan", "Joseph", "Jessica",
	"Thomas", "Sarah", "Charles", "Karen", "Christopher", "Nancy", "Daniel", "Lisa",
	"Matthew", "Betty", "Anthony", "Margaret", "Mark", "Sandra", "Donald", "Ashley",
	"Steven", "Kimberly", "Paul", "Emily", "Andrew", "Donna", "Joshua", "Michelle",
}

var LastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis",
	"Rodriguez", "Martinez", "Hernandez", "Lopez", "Gonzalez", "Wilson", "Anderson",
	"Thomas", "Taylor", "Moore", "Jackson", "Martin", "Lee", "Thompson", "White",
	"Harris", "Sanchez", "Clark", "Ramirez", "Lewis", "Robinson", "Walker", "Young",
}

// NameProvider supplies the two halves of a full name. Each call is an
// independent draw.
type NameProvider interface {
	FirstName() string
	LastName() string
}

type StaticNameProvider struct {
	rng   *rand.Rand
	first []string
	last  []string
}

// NewStaticNameProvider picks uniformly from first and last. Empty lists fall
// back to FirstNames and LastNames.
func NewStaticNameProvider(rng *rand.Rand, first, last []string) *StaticNameProvider {
	if len(first) == 0 {
		first = FirstNames
	}
	if len(last) == 0 {
		last = LastNames
	}
	return &StaticNameProvider{rng: rng, first: first, last: last}
}

func (p *StaticNameProvider) FirstName() string {
	return p.first[p.rng.Intn(len(p.first))]
}

func (p *StaticNameProvider) LastName() string {
	return p.last[p.rng.Intn(len(p.last))]
}

// FakerNameProvider draws from faker's name corpus. It ignores seeds.
type FakerNameProvider struct{}

func (FakerNameProvider) FirstName() string {
	return faker.FirstName()
}

func (FakerNameProvider) LastName() string {
	return faker.LastName()
}
