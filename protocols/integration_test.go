package protocols_test

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/luxfi/election/internal/test"
	"github.com/luxfi/election/pkg/election"
	"github.com/luxfi/election/pkg/protocol"
	"github.com/luxfi/election/protocols/coordinator"
	"github.com/luxfi/election/protocols/guardian"
	"github.com/luxfi/election/protocols/voter"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestIntegration(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Election Integration Suite")
}

var _ = Describe("Election", func() {
	var e *test.Election

	count := func(result *election.PlaintextTally, option string) int {
		n, ok := result.Count(test.ContestID, option)
		Expect(ok).To(BeTrue())
		return n
	}

	Context("with three guardians and a quorum of three", func() {
		BeforeEach(func() {
			e = test.NewElection(3, 3, GinkgoLogr)
		})

		It("publishes a single vote for A", func() {
			joint := e.KeyCeremony(GinkgoT())
			Expect(joint.JointKey.IsIdentity()).To(BeFalse())
			Expect(e.Coordinator.IsKeyCeremonyDone()).To(BeTrue())

			e.OpenVoting(GinkgoT())
			cast, err := e.Voter(GinkgoT(), "ballot-1").Cast(test.Vote(test.OptionA), true)
			Expect(err).NotTo(HaveOccurred())
			e.Send(GinkgoT(), cast)

			result := e.Tally(GinkgoT())
			Expect(count(result, test.OptionA)).To(Equal(1))
			Expect(count(result, test.OptionB)).To(Equal(0))

			Expect(e.Coordinator.Phase()).To(Equal(coordinator.TallyPublished))
			for _, g := range e.Guardians {
				Expect(g.Phase()).To(Equal(guardian.ShareSubmitted))
			}
		})

		It("publishes an empty tally when nobody votes", func() {
			e.KeyCeremony(GinkgoT())
			e.OpenVoting(GinkgoT())

			result := e.Tally(GinkgoT())
			Expect(count(result, test.OptionA)).To(BeZero())
			Expect(count(result, test.OptionB)).To(BeZero())
		})
	})

	Context("with many voters", func() {
		DescribeTable("matches the plaintext reference tally",
			func(n, k, voters int) {
				e = test.NewElection(n, k, GinkgoLogr)
				e.KeyCeremony(GinkgoT())
				e.OpenVoting(GinkgoT())

				rng := rand.New(rand.NewSource(int64(n*100 + voters)))
				options := []string{test.OptionA, test.OptionB, ""}
				reference := map[string]int{}
				for i := 0; i < voters; i++ {
					choice := options[rng.Intn(len(options))]
					if choice != "" {
						reference[choice]++
					}
					cast, err := e.Voter(GinkgoT(), fmt.Sprintf("ballot-%d", i)).Cast(test.Vote(choice), true)
					Expect(err).NotTo(HaveOccurred())
					e.Send(GinkgoT(), cast)
				}

				tally, err := e.Coordinator.CastTally()
				Expect(err).NotTo(HaveOccurred())
				Expect(tally.Count()).To(Equal(voters))

				result := e.Tally(GinkgoT())
				Expect(count(result, test.OptionA)).To(Equal(reference[test.OptionA]))
				Expect(count(result, test.OptionB)).To(Equal(reference[test.OptionB]))
			},
			Entry("2 guardians, 8 voters", 2, 2, 8),
			Entry("3 guardians, 12 voters", 3, 2, 12),
			Entry("5 guardians, 10 voters", 5, 3, 10),
		)
	})

	Context("when actors restart from snapshots", func() {
		It("reaches the same tally", func() {
			e = test.NewElection(3, 3, GinkgoLogr)
			e.KeyCeremony(GinkgoT())
			e.OpenVoting(GinkgoT())

			v := e.Voter(GinkgoT(), "ballot-1")
			data, err := v.Snapshot()
			Expect(err).NotTo(HaveOccurred())
			v, err = voter.Restore(data, protocol.WithLogger(GinkgoLogr))
			Expect(err).NotTo(HaveOccurred())
			cast, err := v.Cast(test.Vote(test.OptionB), true)
			Expect(err).NotTo(HaveOccurred())
			e.Send(GinkgoT(), cast)

			// rebuild the network from snapshots of every actor
			restarted := test.NewNetwork(GinkgoLogr)
			data, err = e.Coordinator.Snapshot()
			Expect(err).NotTo(HaveOccurred())
			c, err := coordinator.Restore(data, protocol.WithLogger(GinkgoLogr))
			Expect(err).NotTo(HaveOccurred())
			restarted.Join(coordinator.Role, c)
			for _, g := range e.Guardians {
				data, err := g.Snapshot()
				Expect(err).NotTo(HaveOccurred())
				r, err := guardian.Restore(data, protocol.WithLogger(GinkgoLogr))
				Expect(err).NotTo(HaveOccurred())
				restarted.Join(string(r.ID()), r)
			}
			e.Network = restarted

			result := e.Tally(GinkgoT())
			Expect(count(result, test.OptionA)).To(Equal(0))
			Expect(count(result, test.OptionB)).To(Equal(1))
			Expect(c.IsTallyDone()).To(BeTrue())
		})
	})

	Context("with irrelevant messages interleaved", func() {
		It("ends in the same phases", func() {
			e = test.NewElection(2, 2, GinkgoLogr)
			noise := func() *protocol.Message {
				return &protocol.Message{Type: "noise", Content: []byte{0xf6}}
			}
			create := test.Message(GinkgoT(), election.TypeCreateElection, e.Creation)
			e.Send(GinkgoT(), noise(), create, noise(), test.Message(GinkgoT(), election.TypeStartKeyCeremony, nil), noise())
			Expect(e.Coordinator.IsKeyCeremonyDone()).To(BeTrue())

			e.Send(GinkgoT(), noise(), test.Message(GinkgoT(), election.TypeStartVote, nil), noise())
			e.Send(GinkgoT(), test.Message(GinkgoT(), election.TypeEndVote, nil), noise(), test.Message(GinkgoT(), election.TypeStartTally, nil))
			Expect(e.Coordinator.IsTallyDone()).To(BeTrue())
		})
	})
})
