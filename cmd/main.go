// 指示: miu200521358
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/miu200521358/mu_motion_blend/pkg/adapter/io_motion"
	"github.com/miu200521358/mu_motion_blend/pkg/adapter/io_skeleton"
	"github.com/miu200521358/mu_motion_blend/pkg/domain"
	"github.com/miu200521358/mu_motion_blend/pkg/usecase"
)

// options はCLI引数を保持する。
type options struct {
	skeletonPath string
	motionPath   string
	outputPath   string
	mirror       bool
}

// main はスケルトンへのモーション合成(ベイク)を実行する。
func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run はCLI処理全体を実行する。
// モーション定義を指定した場合はその1本を、省略した場合は組み込みの
// 待機・歩行2モーションを対象スケルトンへ合成してJSONへ書き出す。
func run(args []string, out io.Writer, errOut io.Writer) error {
	opts, err := parseOptions(args, errOut)
	if err != nil {
		return err
	}

	skeletonRepository := io_skeleton.NewSkeletonRepository()
	fmt.Fprintf(out, "[mu_motion_blend] スケルトン読み込み開始: %s\n", opts.skeletonPath)
	skeleton, err := skeletonRepository.Load(opts.skeletonPath)
	if err != nil {
		return fmt.Errorf("スケルトン読み込みに失敗しました: %w", err)
	}

	family := usecase.DetectRigFamily(skeleton)
	fmt.Fprintf(out, "[mu_motion_blend] リグ系統: %s\n", family.String())

	if opts.motionPath == "" {
		return bakeBuiltinMotions(opts, skeleton, out)
	}
	return bakeSingleMotion(opts, skeleton, out)
}

// bakeSingleMotion は指定モーション定義1本を合成して書き出す。
func bakeSingleMotion(opts options, skeleton *domain.Skeleton, out io.Writer) error {
	motionRepository := io_motion.NewMotionRepository()
	motion, err := motionRepository.Load(opts.motionPath)
	if err != nil {
		return fmt.Errorf("モーション定義読み込みに失敗しました: %w", err)
	}

	composed := usecase.CreateSingleMotionPoseData(skeleton, motion, nil, opts.mirror)
	if composed == nil {
		return fmt.Errorf("対応ボーンを解決できないためモーションを合成できません: %s", skeleton.Name)
	}

	outputPath := opts.outputPath
	if strings.TrimSpace(outputPath) == "" {
		outputPath = defaultOutputPath(opts.motionPath, "_baked")
	}
	if err := ensureOutputDir(outputPath); err != nil {
		return err
	}
	if err := io_motion.SaveComposedPose(outputPath, composed); err != nil {
		return fmt.Errorf("合成結果の保存に失敗しました: %w", err)
	}
	fmt.Fprintf(out, "[mu_motion_blend] 合成完了: %s (bones=%d frames=%d)\n",
		outputPath, len(composed.Bones), composed.TotalFrames)
	return nil
}

// bakeBuiltinMotions は組み込みの待機・歩行2モーションを合成して書き出す。
func bakeBuiltinMotions(opts options, skeleton *domain.Skeleton, out io.Writer) error {
	blendData := usecase.CreatePoseData(skeleton, nil)
	if blendData == nil {
		return fmt.Errorf("対応ボーンを解決できないためモーションを合成できません: %s", skeleton.Name)
	}

	basePath := opts.outputPath
	if strings.TrimSpace(basePath) == "" {
		basePath = defaultOutputPath(opts.skeletonPath, "")
	} else {
		basePath = strings.TrimSuffix(basePath, filepath.Ext(basePath)) + ".json"
	}

	idlePath := strings.TrimSuffix(basePath, ".json") + "_idle.json"
	walkPath := strings.TrimSuffix(basePath, ".json") + "_walk.json"
	if err := ensureOutputDir(basePath); err != nil {
		return err
	}
	if err := io_motion.SaveComposedPose(idlePath, blendData.Idle); err != nil {
		return fmt.Errorf("待機モーションの保存に失敗しました: %w", err)
	}
	if err := io_motion.SaveComposedPose(walkPath, blendData.Walk); err != nil {
		return fmt.Errorf("歩行モーションの保存に失敗しました: %w", err)
	}
	fmt.Fprintf(out, "[mu_motion_blend] 合成完了: %s, %s\n", idlePath, walkPath)
	return nil
}

// parseOptions はCLI引数を解析する。
func parseOptions(args []string, errOut io.Writer) (options, error) {
	fs := flag.NewFlagSet("mu_motion_blend", flag.ContinueOnError)
	fs.SetOutput(errOut)

	skeleton := fs.String("skeleton", "", "入力スケルトン定義JSONパス")
	motion := fs.String("motion", "", "入力モーション定義JSONパス(省略時は組み込みモーション)")
	out := fs.String("out", "", "出力JSONパス")
	mirror := fs.Bool("mirror", false, "モーションを左右反転して合成する")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	if *skeleton == "" && fs.NArg() > 0 {
		*skeleton = fs.Arg(0)
	}
	if *skeleton == "" {
		return options{}, fmt.Errorf("入力スケルトン定義を指定してください (-skeleton)")
	}
	if !strings.EqualFold(filepath.Ext(*skeleton), ".json") {
		return options{}, fmt.Errorf("入力拡張子が .json ではありません: %s", *skeleton)
	}
	if *motion != "" && !strings.EqualFold(filepath.Ext(*motion), ".json") {
		return options{}, fmt.Errorf("モーション定義の拡張子が .json ではありません: %s", *motion)
	}

	return options{
		skeletonPath: *skeleton,
		motionPath:   *motion,
		outputPath:   *out,
		mirror:       *mirror,
	}, nil
}

// defaultOutputPath は入力パスから出力パスを導出する。
func defaultOutputPath(inputPath string, suffix string) string {
	dir := filepath.Dir(inputPath)
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	return filepath.Join(dir, base+suffix+".json")
}

// ensureOutputDir は出力先ディレクトリを作成する。
func ensureOutputDir(outputPath string) error {
	dir := filepath.Dir(outputPath)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("出力先ディレクトリの作成に失敗しました: %w", err)
	}
	return nil
}
