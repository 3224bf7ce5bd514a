package exportmodule

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSegments() []Segment {
	return []Segment{
		{ClipID: "c1", TrackID: "track-1", InputFile: "/media/a.mp4", StartTime: 0, Duration: 5, OutputFile: "/tmp/x/segment-track-1-c1.mp4"},
		{ClipID: "c2", TrackID: "track-2", InputFile: "/media/b.mp4", StartTime: 2, Duration: 3, OutputFile: "/tmp/x/segment-track-2-c2.mp4"},
		{ClipID: "c3", TrackID: "track-1", InputFile: "/media/a.mp4", StartTime: 10, Duration: 4, OutputFile: "/tmp/x/segment-track-1-c3.mp4"},
	}
}

func findArg(t *testing.T, args []string, flag string) string {
	t.Helper()
	for i, a := range args {
		if a == flag {
			require.Less(t, i+1, len(args), "flag %s has no value", flag)
			return args[i+1]
		}
	}
	t.Fatalf("flag %s not found in %v", flag, args)
	return ""
}

func TestBuildCommandSequenceStages(t *testing.T) {
	settings := Settings{Quality: QualityMedium, Resolution: Resolution1080p, FPS: FPSMatchSource}
	commands := BuildCommandSequence(testSegments(), settings, "/out/final.mp4")

	require.Len(t, commands, 4, "one extraction per segment plus one composition")
	for _, cmd := range commands[:3] {
		assert.Equal(t, 1, cmd.Stage)
	}
	assert.Equal(t, 2, commands[3].Stage)
}

func TestExtractionCommand(t *testing.T) {
	settings := Settings{Quality: QualityMedium, Resolution: Resolution1080p}
	commands := BuildCommandSequence(testSegments(), settings, "/out/final.mp4")

	args := commands[1].Args
	assert.Equal(t, "/media/b.mp4", findArg(t, args, "-i"))
	assert.Equal(t, "2", findArg(t, args, "-ss"))
	assert.Equal(t, "3", findArg(t, args, "-t"))
	assert.Equal(t, "libx264", findArg(t, args, "-c:v"))
	assert.Equal(t, "aac", findArg(t, args, "-c:a"))
	assert.Equal(t, "make_zero", findArg(t, args, "-avoid_negative_ts"))
	assert.Equal(t, "/tmp/x/segment-track-2-c2.mp4", args[len(args)-1])
}

func TestCompositionDedupesInputs(t *testing.T) {
	settings := Settings{Quality: QualityMedium, Resolution: Resolution1080p}
	commands := BuildCommandSequence(testSegments(), settings, "/out/final.mp4")
	args := commands[3].Args

	// Two distinct sources even though three segments reference them.
	inputs := 0
	for _, a := range args {
		if a == "-i" {
			inputs++
		}
	}
	assert.Equal(t, 2, inputs)

	// The third segment references the first input's index in the graph.
	graph := findArg(t, args, "-filter_complex")
	assert.Contains(t, graph, "[0:v]trim=start=10:duration=4,setpts=PTS-STARTPTS[v2]")
	assert.Contains(t, graph, "[1:a]atrim=start=2:duration=3,asetpts=PTS-STARTPTS[a1]")
}

func TestCompositionFilterGraph(t *testing.T) {
	settings := Settings{Quality: QualityHigh, Resolution: Resolution720p}
	commands := BuildCommandSequence(testSegments(), settings, "/out/final.mp4")
	args := commands[3].Args

	graph := findArg(t, args, "-filter_complex")
	assert.Contains(t, graph, "[v0][v1][v2]concat=n=3:v=1:a=0[concat_v]")
	assert.Contains(t, graph, "[concat_v]scale=1280:720[vout]")
	assert.Contains(t, graph, "[a0][a1][a2]concat=n=3:v=0:a=1[aout]")

	assert.Equal(t, "[vout]", findArg(t, args, "-map"))
	assert.Equal(t, "20", findArg(t, args, "-crf"))
	assert.Equal(t, "128k", findArg(t, args, "-b:a"))
	assert.Equal(t, "48000", findArg(t, args, "-ar"))
	assert.Equal(t, "yuv420p", findArg(t, args, "-pix_fmt"))
	assert.Equal(t, "+faststart", findArg(t, args, "-movflags"))
	assert.Equal(t, "/out/final.mp4", args[len(args)-1])
}

func TestSourceResolutionOmitsScale(t *testing.T) {
	settings := Settings{Quality: QualityLow, Resolution: ResolutionSource}
	commands := BuildCommandSequence(testSegments(), settings, "/out/final.mp4")

	graph := findArg(t, commands[3].Args, "-filter_complex")
	assert.NotContains(t, graph, "scale=")
	assert.Contains(t, graph, "concat=n=3:v=1:a=0[vout]")
}

func TestFrameRateHandling(t *testing.T) {
	segments := testSegments()

	// Match-source: no -r flag at all.
	commands := BuildCommandSequence(segments, Settings{Quality: QualityMedium, Resolution: Resolution1080p, FPS: FPSMatchSource}, "/out/a.mp4")
	assert.NotContains(t, commands[3].Args, "-r")

	commands = BuildCommandSequence(segments, Settings{Quality: QualityMedium, Resolution: Resolution1080p, FPS: "30"}, "/out/a.mp4")
	assert.Equal(t, "30", findArg(t, commands[3].Args, "-r"))
}

func TestQualityCRFMapping(t *testing.T) {
	assert.Equal(t, 20, QualityCRF(QualityHigh))
	assert.Equal(t, 23, QualityCRF(QualityMedium))
	assert.Equal(t, 26, QualityCRF(QualityLow))
	assert.Equal(t, 23, QualityCRF("unknown"))
}

func TestResolutionScaleMapping(t *testing.T) {
	for resolution, want := range map[string]string{
		Resolution1080p: "1920:1080",
		Resolution720p:  "1280:720",
		Resolution4K:    "3840:2160",
	} {
		scale, ok := ResolutionScale(resolution)
		assert.True(t, ok, resolution)
		assert.Equal(t, want, scale)
	}
	_, ok := ResolutionScale(ResolutionSource)
	assert.False(t, ok)
}

func TestEstimateSize(t *testing.T) {
	base := Settings{Quality: QualityMedium, Resolution: Resolution1080p}
	assert.Equal(t, int64(50*1024*1024), EstimateSize(60, base))

	high4k := Settings{Quality: QualityHigh, Resolution: Resolution4K}
	assert.Equal(t, int64(50*1.2*4*1024*1024), EstimateSize(60, high4k))

	low720 := Settings{Quality: QualityLow, Resolution: Resolution720p}
	assert.Equal(t, int64(50*0.5*0.5*1024*1024), EstimateSize(60, low720))

	source := Settings{Quality: QualityMedium, Resolution: ResolutionSource}
	assert.Equal(t, EstimateSize(60, base), EstimateSize(60, source))
}

func TestValidateSettings(t *testing.T) {
	valid := Settings{Filename: "out.mp4", OutputDir: "/tmp", Resolution: Resolution1080p, Quality: QualityMedium, FPS: FPSMatchSource}
	assert.Empty(t, ValidateSettings(valid, 0))

	// All problems are collected, not short-circuited.
	problems := ValidateSettings(Settings{Filename: "", OutputDir: ""}, 0)
	assert.Len(t, problems, 2)

	problems = ValidateSettings(Settings{Filename: "bad name!.mp4", OutputDir: "/tmp"}, 0)
	require.Len(t, problems, 1)
	assert.True(t, strings.Contains(problems[0], "invalid characters"))

	problems = ValidateSettings(Settings{Filename: "a.mp4", OutputDir: "/tmp", Resolution: "480p", Quality: "ultra", FPS: "fast"}, 0)
	assert.Len(t, problems, 3)
}
