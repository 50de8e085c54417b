package osquery

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSystemOps mocks the SystemOps interface.
type MockSystemOps struct {
	mock.Mock
}

func (m *MockSystemOps) Gettid() (int, ThreadIDKind) {
	args := m.Called()
	return args.Int(0), args.Get(1).(ThreadIDKind)
}

func (m *MockSystemOps) Getpid() int {
	args := m.Called()
	return args.Int(0)
}

func (m *MockSystemOps) SchedSetaffinity(tid int, mask *CPUSet) error {
	args := m.Called(tid, mask)
	return args.Error(0)
}

func (m *MockSystemOps) SchedGetaffinity(tid int, mask *CPUSet) error {
	args := m.Called(tid, mask)
	if fill, ok := args.Get(1).([]int); ok {
		for _, cpu := range fill {
			mask.Set(cpu)
		}
	}
	return args.Error(0)
}

func (m *MockSystemOps) ProcessThreads(pid int) ([]int, error) {
	args := m.Called(pid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int), args.Error(1)
}

// rejectErr carries no errno, so it maps to code -1 on every platform.
var rejectErr = errors.New("rejected")

func onlyCPU(cpu int) interface{} {
	return mock.MatchedBy(func(mask *CPUSet) bool {
		return mask.IsSet(cpu) && mask.Count() == 1
	})
}

func TestThreadID(t *testing.T) {
	tests := []struct {
		name     string
		tid      int
		kind     ThreadIDKind
		expected ThreadID
		int32Val int32
	}{
		{
			name:     "Kernel tid",
			tid:      4243,
			kind:     KindKernelTID,
			expected: ThreadID{Kind: KindKernelTID, Value: 4243},
			int32Val: 4243,
		},
		{
			name:     "Negative kernel tid is unavailable",
			tid:      -1,
			kind:     KindKernelTID,
			expected: ThreadID{Kind: KindUnavailable, Value: NoPID},
			int32Val: NoPID,
		},
		{
			name:     "Opaque handle keeps negative values",
			tid:      -12345,
			kind:     KindOpaqueHandle,
			expected: ThreadID{Kind: KindOpaqueHandle, Value: -12345},
			int32Val: -12345,
		},
		{
			name:     "Unavailable",
			tid:      0,
			kind:     KindUnavailable,
			expected: ThreadID{Kind: KindUnavailable, Value: NoPID},
			int32Val: NoPID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys := new(MockSystemOps)
			sys.On("Gettid").Return(tt.tid, tt.kind)

			got := NewWithOps(sys).ThreadID()
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, tt.int32Val, got.Int32())
			sys.AssertExpectations(t)
		})
	}
}

func TestProcessID(t *testing.T) {
	sys := new(MockSystemOps)
	sys.On("Getpid").Return(4242)

	b := NewWithOps(sys)
	assert.Equal(t, int32(4242), b.ProcessID())
	assert.Equal(t, int32(4242), b.ProcessID())
	sys.AssertNumberOfCalls(t, "Getpid", 2)
}

func TestSetProcessorAffinity(t *testing.T) {
	tests := []struct {
		name         string
		cpu          int
		setupMockSys func(*MockSystemOps)
		expected     AffinityResult
		expectedCode int32
	}{
		{
			name: "Success - All threads pinned",
			cpu:  0,
			setupMockSys: func(m *MockSystemOps) {
				m.On("SchedSetaffinity", 0, onlyCPU(0)).Return(nil).Once()
				m.On("Gettid").Return(4242, KindKernelTID)
				m.On("Getpid").Return(4242)
				m.On("ProcessThreads", 4242).Return([]int{4242, 4243, 4244}, nil)
				m.On("SchedSetaffinity", 4243, onlyCPU(0)).Return(nil).Once()
				m.On("SchedSetaffinity", 4244, onlyCPU(0)).Return(nil).Once()
			},
			expected:     AffinityResult{Status: StatusOK},
			expectedCode: 0,
		},
		{
			name: "Success - Sibling failure is logged only",
			cpu:  3,
			setupMockSys: func(m *MockSystemOps) {
				m.On("SchedSetaffinity", 0, onlyCPU(3)).Return(nil).Once()
				m.On("Gettid").Return(100, KindKernelTID)
				m.On("Getpid").Return(100)
				m.On("ProcessThreads", 100).Return([]int{100, 101, 102}, nil)
				m.On("SchedSetaffinity", 101, onlyCPU(3)).Return(errors.New("sys error")).Once()
				m.On("SchedSetaffinity", 102, onlyCPU(3)).Return(nil).Once()
			},
			expected:     AffinityResult{Status: StatusOK},
			expectedCode: 0,
		},
		{
			name: "Success - Thread listing failed",
			cpu:  1,
			setupMockSys: func(m *MockSystemOps) {
				m.On("SchedSetaffinity", 0, onlyCPU(1)).Return(nil).Once()
				m.On("Gettid").Return(7, KindKernelTID)
				m.On("Getpid").Return(7)
				m.On("ProcessThreads", 7).Return(nil, errors.New("no procfs"))
			},
			expected:     AffinityResult{Status: StatusOK},
			expectedCode: 0,
		},
		{
			name: "Rejected - Siblings untouched",
			cpu:  9999,
			setupMockSys: func(m *MockSystemOps) {
				m.On("SchedSetaffinity", 0, mock.Anything).Return(rejectErr).Once()
				m.On("Getpid").Return(55).Maybe()
			},
			expected:     AffinityResult{Status: StatusRejected, Errno: -1},
			expectedCode: -1,
		},
		{
			name: "Unsupported",
			cpu:  0,
			setupMockSys: func(m *MockSystemOps) {
				m.On("SchedSetaffinity", 0, mock.Anything).Return(ErrUnsupported).Once()
				m.On("Getpid").Return(55).Maybe()
			},
			expected:     AffinityResult{Status: StatusUnsupported},
			expectedCode: -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys := new(MockSystemOps)
			tt.setupMockSys(sys)

			res := NewWithOps(sys).SetProcessorAffinity(tt.cpu)

			assert.Equal(t, tt.expected, res)
			assert.Equal(t, tt.expectedCode, res.Code())
			sys.AssertExpectations(t)
			sys.AssertNotCalled(t, "ProcessThreads", 55)
		})
	}
}

func TestSetProcessorAffinity_OutOfRangeMaskIsEmpty(t *testing.T) {
	sys := new(MockSystemOps)
	sys.On("SchedSetaffinity", 0, mock.MatchedBy(func(mask *CPUSet) bool {
		return mask.Count() == 0
	})).Return(rejectErr).Once()

	res := NewWithOps(sys).SetProcessorAffinity(-5)
	assert.Equal(t, StatusRejected, res.Status)
	assert.NotZero(t, res.Code())
	sys.AssertExpectations(t)
}

func TestProcessorAffinity(t *testing.T) {
	sys := new(MockSystemOps)
	sys.On("SchedGetaffinity", 0, mock.Anything).Return(nil, []int{5, 0, 130})

	cpus, err := NewWithOps(sys).ProcessorAffinity()
	require.NoError(t, err)
	assert.Equal(t, []int{0, 5, 130}, cpus)
}

func TestProcessorAffinity_Unsupported(t *testing.T) {
	sys := new(MockSystemOps)
	sys.On("SchedGetaffinity", 0, mock.Anything).Return(ErrUnsupported, nil)

	cpus, err := NewWithOps(sys).ProcessorAffinity()
	assert.Nil(t, cpus)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestAffinityResult(t *testing.T) {
	assert.NoError(t, AffinityResult{Status: StatusOK}.Err())
	assert.True(t, AffinityResult{Status: StatusOK}.OK())

	unsupported := AffinityResult{Status: StatusUnsupported}
	assert.ErrorIs(t, unsupported.Err(), ErrUnsupported)
	assert.Equal(t, int32(-1), unsupported.Code())

	rejected := AffinityResult{Status: StatusRejected, Errno: 22}
	assert.ErrorIs(t, rejected.Err(), ErrRejected)
	assert.Contains(t, rejected.Err().Error(), "errno 22")
	assert.Equal(t, int32(22), rejected.Code())
	assert.False(t, rejected.OK())

	assert.Equal(t, "rejected", StatusRejected.String())
	assert.Equal(t, "unknown", AffinityStatus(42).String())
}

func TestThreadIDString(t *testing.T) {
	assert.Equal(t, "tid:12", ThreadID{Kind: KindKernelTID, Value: 12}.String())
	assert.Equal(t, "opaque-handle:-3", ThreadID{Kind: KindOpaqueHandle, Value: -3}.String())
	assert.Equal(t, "unavailable", ThreadID{Kind: KindUnavailable, Value: NoPID}.String())
	assert.True(t, ThreadID{Kind: KindKernelTID, Value: 12}.IsKernel())
	assert.False(t, ThreadID{Kind: KindOpaqueHandle, Value: 12}.IsKernel())
}

func TestMaskCPUs(t *testing.T) {
	var mask CPUSet
	assert.Empty(t, maskCPUs(&mask))

	mask.Set(1)
	mask.Set(63)
	mask.Set(64)
	mask.Set(maxCPUs - 1)
	mask.Set(maxCPUs) // ignored
	assert.Equal(t, []int{1, 63, 64, maxCPUs - 1}, maskCPUs(&mask))
}
