package actor

import (
	"context"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"
)

var _ = Describe("Runner", func() {
	var (
		mockCtrl *gomock.Controller
		ticker   *MockTicker
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		ticker = NewMockTicker(mockCtrl)
		ticker.EXPECT().Name().Return("TestActor").AnyTimes()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should refuse a nil ticker", func() {
		_, err := NewRunner(nil, time.Millisecond)

		Expect(err).NotTo(BeNil())
	})

	It("should refuse a non-positive interval", func() {
		_, err := NewRunner(ticker, 0)

		Expect(err).NotTo(BeNil())
	})

	It("should tick repeatedly until the context ends", func() {
		var ticks int64
		ticker.EXPECT().Tick().
			Do(func() { atomic.AddInt64(&ticks, 1) }).
			Return(true).
			AnyTimes()

		r, err := NewRunner(ticker, time.Millisecond)
		Expect(err).To(BeNil())

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			r.Run(ctx)
			close(done)
		}()

		Eventually(func() int64 {
			return atomic.LoadInt64(&ticks)
		}).Should(BeNumerically(">=", 3))

		cancel()
		Eventually(done).Should(BeClosed())
	})

	It("should not tick while paused", func() {
		var ticks int64
		ticker.EXPECT().Tick().
			Do(func() { atomic.AddInt64(&ticks, 1) }).
			Return(true).
			AnyTimes()

		r, _ := NewRunner(ticker, time.Millisecond)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go r.Run(ctx)

		Eventually(func() int64 {
			return atomic.LoadInt64(&ticks)
		}).Should(BeNumerically(">=", 1))

		r.Pause()
		paused := atomic.LoadInt64(&ticks)
		Consistently(func() int64 {
			return atomic.LoadInt64(&ticks)
		}).Should(BeNumerically("<=", paused+1))

		r.Continue()
		Eventually(func() int64 {
			return atomic.LoadInt64(&ticks)
		}).Should(BeNumerically(">", paused+1))
	})

	It("should tolerate repeated pauses and continues", func() {
		ticker.EXPECT().Tick().Return(true).AnyTimes()
		r, _ := NewRunner(ticker, time.Millisecond)

		r.Pause()
		r.Pause()
		r.Continue()
		r.Continue()
	})
})

var _ = Describe("Group", func() {
	It("should start and stop every runner", func() {
		mockCtrl := gomock.NewController(GinkgoT())
		defer mockCtrl.Finish()

		var ticks int64
		group := NewGroup()

		for i := 0; i < 3; i++ {
			ticker := NewMockTicker(mockCtrl)
			ticker.EXPECT().Name().Return("TestActor").AnyTimes()
			ticker.EXPECT().Tick().
				Do(func() { atomic.AddInt64(&ticks, 1) }).
				Return(true).
				AnyTimes()

			r, err := NewRunner(ticker, time.Millisecond)
			Expect(err).To(BeNil())
			group.Add(r)
		}

		ctx, cancel := context.WithCancel(context.Background())
		group.Start(ctx)

		Eventually(func() int64 {
			return atomic.LoadInt64(&ticks)
		}).Should(BeNumerically(">=", 9))

		cancel()
		group.Wait()
	})
})
