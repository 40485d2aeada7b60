//go:build mage
// +build mage

package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binaryName     = "quoteboard"
	redisContainer = "quoteboard-redis-dev"
)

// Default 默认任务：显示帮助信息
func Default() {
	fmt.Println("QuoteBoard 构建系统")
	fmt.Println("==================")
	fmt.Println("可用任务:")
	fmt.Println("  mage build        - 构建 quoteboard")
	fmt.Println("  mage test         - 运行所有测试")
	fmt.Println("  mage testRace     - 开启竞态检测运行测试")
	fmt.Println("  mage run          - 以 Web 模式启动看板")
	fmt.Println("  mage terminal     - 以终端模式启动看板")
	fmt.Println("  mage redis:up     - 启动本地 Redis (快照发布)")
	fmt.Println("  mage redis:down   - 停止本地 Redis")
	fmt.Println("  mage clean        - 清理构建产物")
	fmt.Println("  mage lint         - 运行代码检查")
	fmt.Println("  mage coverage     - 生成测试覆盖率报告")
}

// Build 构建二进制文件
func Build() error {
	mg.Deps(Clean)

	fmt.Printf("📦 构建 %s...\n", binaryName)
	output := filepath.Join("./dist", binaryName)
	if runtime.GOOS == "windows" {
		output += ".exe"
	}

	cmd := exec.Command("go", "build", "-o", output, "./cmd/quoteboard")
	cmd.Env = append(os.Environ(), "CGO_ENABLED=0")
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("构建 %s 失败: %v\n输出: %s", binaryName, err, string(out))
	}

	if info, err := os.Stat(output); err == nil {
		fmt.Printf("   ✅ %s: %d MB\n", binaryName, info.Size()/1024/1024)
	}
	return nil
}

// Test 运行所有测试
func Test() error {
	fmt.Println("🧪 运行测试...")
	if err := sh.RunV("go", "test", "./...", "-timeout=5m"); err != nil {
		return fmt.Errorf("测试失败: %v", err)
	}
	fmt.Println("✅ 测试通过!")
	return nil
}

// TestRace 开启竞态检测运行测试
func TestRace() error {
	return sh.RunV("go", "test", "-race", "./...", "-timeout=10m")
}

// Run 以 Web 模式启动看板
func Run() error {
	return sh.RunV("go", "run", "./cmd/quoteboard", "-mode", "web")
}

// Terminal 以终端模式启动看板
func Terminal() error {
	return sh.RunV("go", "run", "./cmd/quoteboard", "-mode", "terminal")
}

type Redis mg.Namespace

// Up 启动本地 Redis，用于调试快照发布
func (Redis) Up() error {
	fmt.Println("🐳 启动 Redis...")
	return sh.RunV("docker", "run", "-d", "--rm", "--name", redisContainer, "-p", "6379:6379", "redis:7-alpine")
}

// Down 停止本地 Redis
func (Redis) Down() error {
	return sh.RunV("docker", "stop", redisContainer)
}

// Clean 清理构建产物
func Clean() error {
	fmt.Println("🧹 清理构建产物...")

	if err := os.MkdirAll("./dist", 0755); err != nil {
		return fmt.Errorf("创建 dist 目录失败: %v", err)
	}

	files, err := filepath.Glob("./dist/*")
	if err != nil {
		return fmt.Errorf("查找文件失败: %v", err)
	}
	for _, file := range files {
		if err := os.Remove(file); err != nil {
			fmt.Printf("警告: 无法删除文件 %s: %v\n", file, err)
		}
	}

	if err := os.RemoveAll("./reports"); err != nil {
		fmt.Printf("警告: 清理覆盖率报告失败: %v\n", err)
	}

	fmt.Println("✅ 清理完成!")
	return nil
}

// Lint 运行代码检查
func Lint() error {
	fmt.Println("🔍 运行代码检查...")

	output, err := exec.Command("gofmt", "-l", ".").CombinedOutput()
	if err != nil {
		return fmt.Errorf("gofmt 检查失败: %v", err)
	}
	if len(output) > 0 {
		return fmt.Errorf("以下文件需要格式化:\n%s", string(output))
	}

	if err := sh.RunV("go", "vet", "./..."); err != nil {
		return fmt.Errorf("go vet 失败: %v", err)
	}

	fmt.Println("✅ 代码检查通过!")
	return nil
}

// Coverage 生成测试覆盖率报告
func Coverage() error {
	fmt.Println("📈 生成测试覆盖率报告...")

	if err := os.MkdirAll("./reports", 0755); err != nil {
		return fmt.Errorf("创建报告目录失败: %v", err)
	}

	if err := sh.Run("go", "test", "./...", "-coverprofile=./reports/coverage.out", "-covermode=atomic"); err != nil {
		return fmt.Errorf("生成覆盖率失败: %v", err)
	}
	if err := sh.Run("go", "tool", "cover", "-html=./reports/coverage.out", "-o", "./reports/coverage.html"); err != nil {
		return fmt.Errorf("生成HTML报告失败: %v", err)
	}
	if err := sh.RunV("go", "tool", "cover", "-func=./reports/coverage.out"); err != nil {
		return fmt.Errorf("显示覆盖率失败: %v", err)
	}

	fmt.Println("   详细报告: file://" + getAbsolutePath("./reports/coverage.html"))
	return nil
}

func getAbsolutePath(relativePath string) string {
	absPath, err := filepath.Abs(relativePath)
	if err != nil {
		return relativePath
	}
	return absPath
}
