package runconfig

// Train holds optimizer and schedule hyperparameters.
type Train struct {
	LogInterval  int        `json:"log_interval"`
	Seed         int        `json:"seed"`
	Epochs       int        `json:"epochs"`
	LearningRate float64    `json:"learning_rate"`
	Betas        [2]float64 `json:"betas"`
	Eps          float64    `json:"eps"`
	BatchSize    int        `json:"batch_size"`
	FP16Run      bool       `json:"fp16_run"`
	LRDecay      float64    `json:"lr_decay"`
	SegmentSize  int        `json:"segment_size"`
	InitLRRatio  int        `json:"init_lr_ratio"`
	WarmupEpochs int        `json:"warmup_epochs"`
	CMel         int        `json:"c_mel"`
	CKL          float64    `json:"c_kl"`
}

// Data holds frame extraction parameters and the manifest location.
type Data struct {
	MaxWavValue   float64  `json:"max_wav_value"`
	SamplingRate  int      `json:"sampling_rate"`
	FilterLength  int      `json:"filter_length"`
	HopLength     int      `json:"hop_length"`
	WinLength     int      `json:"win_length"`
	NMelChannels  int      `json:"n_mel_channels"`
	MelFmin       float64  `json:"mel_fmin"`
	MelFmax       *float64 `json:"mel_fmax"`
	TrainingFiles string   `json:"training_files"`
}

// Model holds the synthesizer architecture constants.
type Model struct {
	InterChannels          int     `json:"inter_channels"`
	HiddenChannels         int     `json:"hidden_channels"`
	FilterChannels         int     `json:"filter_channels"`
	NHeads                 int     `json:"n_heads"`
	NLayers                int     `json:"n_layers"`
	KernelSize             int     `json:"kernel_size"`
	PDropout               float64 `json:"p_dropout"`
	Resblock               string  `json:"resblock"`
	ResblockKernelSizes    []int   `json:"resblock_kernel_sizes"`
	ResblockDilationSizes  [][]int `json:"resblock_dilation_sizes"`
	UpsampleRates          []int   `json:"upsample_rates"`
	UpsampleInitialChannel int     `json:"upsample_initial_channel"`
	UpsampleKernelSizes    []int   `json:"upsample_kernel_sizes"`
	UseSpectralNorm        bool    `json:"use_spectral_norm"`
	GinChannels            int     `json:"gin_channels"`
	SpkEmbedDim            int     `json:"spk_embed_dim"`
}

// Document is the full trainer configuration.
type Document struct {
	Train Train `json:"train"`
	Data  Data  `json:"data"`
	Model Model `json:"model"`
}

// frameParams vary only with the target sample rate.
type frameParams struct {
	filterLength int
	hopLength    int
	winLength    int
	nMelChannels int
	segmentSize  int
}

var frameTable = map[int]frameParams{
	32000: {filterLength: 1024, hopLength: 320, winLength: 1024, nMelChannels: 80, segmentSize: 12800},
	40000: {filterLength: 2048, hopLength: 400, winLength: 2048, nMelChannels: 125, segmentSize: 12800},
	48000: {filterLength: 2048, hopLength: 480, winLength: 2048, nMelChannels: 128, segmentSize: 17280},
}

// upsampleParams vary with version and sample rate; the product of the rates
// must equal the hop length.
type upsampleParams struct {
	rates   []int
	kernels []int
}

var upsampleTable = map[string]map[int]upsampleParams{
	"v1": {
		32000: {rates: []int{10, 4, 2, 2, 2}, kernels: []int{16, 16, 4, 4, 4}},
		40000: {rates: []int{10, 10, 2, 2}, kernels: []int{16, 16, 4, 4}},
		48000: {rates: []int{10, 6, 2, 2, 2}, kernels: []int{16, 16, 4, 4, 4}},
	},
	"v2": {
		32000: {rates: []int{10, 8, 2, 2}, kernels: []int{20, 16, 4, 4}},
		40000: {rates: []int{10, 10, 2, 2}, kernels: []int{16, 16, 4, 4}},
		48000: {rates: []int{12, 10, 2, 2}, kernels: []int{24, 20, 4, 4}},
	},
}

func baseTrain() Train {
	return Train{
		LogInterval:  200,
		Seed:         1234,
		Epochs:       20000,
		LearningRate: 1e-4,
		Betas:        [2]float64{0.8, 0.99},
		Eps:          1e-9,
		FP16Run:      true,
		LRDecay:      0.999875,
		InitLRRatio:  1,
		WarmupEpochs: 0,
		CMel:         45,
		CKL:          1.0,
	}
}

func baseModel() Model {
	return Model{
		InterChannels:          192,
		HiddenChannels:         192,
		FilterChannels:         768,
		NHeads:                 2,
		NLayers:                6,
		KernelSize:             3,
		PDropout:               0,
		Resblock:               "1",
		ResblockKernelSizes:    []int{3, 7, 11},
		ResblockDilationSizes:  [][]int{{1, 3, 5}, {1, 3, 5}, {1, 3, 5}},
		UpsampleInitialChannel: 512,
		UseSpectralNorm:        false,
		GinChannels:            256,
		SpkEmbedDim:            109,
	}
}
