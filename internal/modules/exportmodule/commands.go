package exportmodule

import (
	"fmt"
	"strings"
)

// BuildCommandSequence turns a segment plan into the ffmpeg invocations for
// the two-stage pipeline: one extraction per segment into a normalized
// intermediate, then a single composition over the original sources.
//
// The composition concatenates every segment in timeline order into one
// linear video and audio stream. Overlapping clips on different tracks are
// therefore sequential in the output, not overlaid; only the live preview
// composites tracks. Real picture-in-picture export would need an overlay
// filter graph and is a separate feature.
func BuildCommandSequence(segments []Segment, settings Settings, outputPath string) []Command {
	commands := make([]Command, 0, len(segments)+1)

	for _, seg := range segments {
		commands = append(commands, Command{
			Stage: 1,
			Args: []string{
				"-y",
				"-i", seg.InputFile,
				"-ss", formatSeconds(seg.StartTime),
				"-t", formatSeconds(seg.Duration),
				"-c:v", "libx264",
				"-c:a", "aac",
				"-avoid_negative_ts", "make_zero",
				seg.OutputFile,
			},
		})
	}

	commands = append(commands, Command{
		Stage: 2,
		Args:  buildCompositionArgs(segments, settings, outputPath),
	})
	return commands
}

// buildCompositionArgs builds the single stage 2 command: deduplicated
// inputs, a filter graph that trims and re-times each segment's video and
// audio independently, concatenation in timeline order, and the requested
// scale and quality parameters.
func buildCompositionArgs(segments []Segment, settings Settings, outputPath string) []string {
	inputs, indexOf := dedupInputs(segments)

	args := []string{"-y"}
	for _, input := range inputs {
		args = append(args, "-i", input)
	}

	args = append(args,
		"-filter_complex", buildFilterGraph(segments, indexOf, settings.Resolution),
		"-map", "[vout]",
		"-map", "[aout]",
		"-c:v", "libx264",
		"-preset", "medium",
		"-crf", fmt.Sprintf("%d", QualityCRF(settings.Quality)),
		"-c:a", "aac",
		"-b:a", "128k",
		"-ar", "48000",
		"-pix_fmt", "yuv420p",
		"-movflags", "+faststart",
	)
	if settings.FPS != "" && settings.FPS != FPSMatchSource {
		args = append(args, "-r", settings.FPS)
	}
	return append(args, outputPath)
}

// dedupInputs returns the distinct source files in first-use order and the
// input index for each. A source used by several segments is opened once.
func dedupInputs(segments []Segment) ([]string, map[string]int) {
	inputs := make([]string, 0, len(segments))
	indexOf := make(map[string]int, len(segments))
	for _, seg := range segments {
		if _, seen := indexOf[seg.InputFile]; !seen {
			indexOf[seg.InputFile] = len(inputs)
			inputs = append(inputs, seg.InputFile)
		}
	}
	return inputs, indexOf
}

// buildFilterGraph emits per-segment trim/atrim chains with PTS reset, a
// concat of all segments in order, and the final scale step. Resolution
// "source" omits the scale step entirely.
func buildFilterGraph(segments []Segment, indexOf map[string]int, resolution string) string {
	filters := make([]string, 0, 2*len(segments)+3)

	for i, seg := range segments {
		idx := indexOf[seg.InputFile]
		filters = append(filters,
			fmt.Sprintf("[%d:v]trim=start=%s:duration=%s,setpts=PTS-STARTPTS[v%d]",
				idx, formatSeconds(seg.StartTime), formatSeconds(seg.Duration), i),
			fmt.Sprintf("[%d:a]atrim=start=%s:duration=%s,asetpts=PTS-STARTPTS[a%d]",
				idx, formatSeconds(seg.StartTime), formatSeconds(seg.Duration), i),
		)
	}

	var videoIn, audioIn strings.Builder
	for i := range segments {
		fmt.Fprintf(&videoIn, "[v%d]", i)
		fmt.Fprintf(&audioIn, "[a%d]", i)
	}

	scale, scaled := ResolutionScale(resolution)
	if scaled {
		filters = append(filters,
			fmt.Sprintf("%sconcat=n=%d:v=1:a=0[concat_v]", videoIn.String(), len(segments)),
			fmt.Sprintf("[concat_v]scale=%s[vout]", scale),
		)
	} else {
		filters = append(filters,
			fmt.Sprintf("%sconcat=n=%d:v=1:a=0[vout]", videoIn.String(), len(segments)),
		)
	}
	filters = append(filters,
		fmt.Sprintf("%sconcat=n=%d:v=0:a=1[aout]", audioIn.String(), len(segments)),
	)

	return strings.Join(filters, "; ")
}
