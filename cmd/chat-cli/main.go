package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kimyounil1/honey-pot-sub000/internal/chat"
	"github.com/kimyounil1/honey-pot-sub000/internal/client"
	"github.com/kimyounil1/honey-pot-sub000/internal/config"
	"github.com/kimyounil1/honey-pot-sub000/internal/logger"
	"github.com/kimyounil1/honey-pot-sub000/internal/model"
)

var reader = bufio.NewReader(os.Stdin)

func main() {
	configFile := flag.String("config", "", "config file path (e.g. etc/config-dev.yaml)")
	flag.Parse()

	cfg := config.Load(*configFile)
	cfg.Log.Console = false
	if cfg.Log.File == "" {
		cfg.Log.File = "chat-cli.log"
	}
	logger.Init(cfg.Log, logger.CLI)

	gw, err := client.New(cfg.Client.GatewayURL, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Println("보험 상담 CLI -", cfg.Client.GatewayURL)
	ctx := context.Background()
	for !login(ctx, gw) {
	}

	ctrl := chat.New(gw, chat.WithPollInterval(cfg.PollInterval()), chat.WithObserver(&printer{}))
	defer ctrl.Close()
	ctrl.RefreshSessions(ctx)

	for {
		printMenu()
		switch prompt("> ") {
		case "1":
			if err := ctrl.Open(ctx, nil); err == nil {
				chatLoop(ctx, ctrl)
			}
		case "2":
			if id, ok := pickChat(ctrl.Snapshot().Chats); ok {
				if err := ctrl.Open(ctx, &id); err == nil {
					printHistory(ctrl.Snapshot())
					chatLoop(ctx, ctrl)
				}
			}
		case "3":
			ctrl.RefreshSessions(ctx)
			printChats(ctrl.Snapshot().Chats)
		case "4":
			if err := gw.Logout(ctx); err != nil {
				fmt.Println("로그아웃 실패:", err)
			}
			return
		case "5":
			return
		default:
			fmt.Println("잘못된 선택입니다")
		}
	}
}

func printMenu() {
	fmt.Println("\n=== 메뉴 ===")
	fmt.Println("1. 새 대화")
	fmt.Println("2. 이전 대화 이어가기")
	fmt.Println("3. 대화 목록")
	fmt.Println("4. 로그아웃")
	fmt.Println("5. 종료")
}

func prompt(label string) string {
	fmt.Print(label)
	input, err := reader.ReadString('\n')
	if err != nil {
		os.Exit(0)
	}
	return strings.TrimSpace(input)
}

func login(ctx context.Context, gw *client.Gateway) bool {
	fmt.Println("\n1. 로그인  2. 회원가입  3. 종료")
	switch prompt("> ") {
	case "1":
		if err := gw.Login(ctx, prompt("아이디: "), prompt("비밀번호: ")); err != nil {
			fmt.Println("로그인 실패:", err)
			return false
		}
		return true
	case "2":
		payload := map[string]string{
			"name":     prompt("이름: "),
			"email":    prompt("이메일: "),
			"password": prompt("비밀번호: "),
		}
		if err := gw.Signup(ctx, payload); err != nil {
			fmt.Println("회원가입 실패:", err)
		} else {
			fmt.Println("회원가입 완료. 로그인해 주세요.")
		}
		return false
	case "3":
		os.Exit(0)
	}
	return false
}

// chatLoop reads lines until "/exit". "/upload <path>" attaches a file to the next message.
func chatLoop(ctx context.Context, ctrl *chat.Controller) {
	fmt.Println("메시지를 입력하세요. /upload <파일>, /exit")
	for {
		line := prompt("나: ")
		switch {
		case line == "/exit":
			return
		case strings.HasPrefix(line, "/upload "):
			upload(ctx, ctrl, strings.TrimSpace(strings.TrimPrefix(line, "/upload ")))
		default:
			err := ctrl.Submit(ctx, line)
			switch {
			case errors.Is(err, chat.ErrBusy):
				fmt.Println("이전 메시지를 처리 중입니다.")
			case errors.Is(err, chat.ErrEmptyMessage):
			case err != nil:
				fmt.Println("전송 실패:", err)
			}
		}
	}
}

func upload(ctx context.Context, ctrl *chat.Controller, path string) {
	f, err := os.Open(path)
	if err != nil {
		fmt.Println("파일을 열 수 없습니다:", err)
		return
	}
	defer f.Close()
	if err := ctrl.Upload(ctx, filepath.Base(path), f); err == nil {
		fmt.Println("첨부 완료. 다음 메시지와 함께 전송됩니다.")
	}
}

func pickChat(chats []model.ChatSummary) (int64, bool) {
	if len(chats) == 0 {
		fmt.Println("대화가 없습니다.")
		return 0, false
	}
	printChats(chats)
	n, err := strconv.Atoi(prompt("번호: "))
	if err != nil || n < 1 || n > len(chats) {
		fmt.Println("잘못된 선택입니다")
		return 0, false
	}
	return chats[n-1].ID, true
}

func printChats(chats []model.ChatSummary) {
	for i, c := range chats {
		updated := ""
		if !c.UpdatedAt.IsZero() {
			updated = c.UpdatedAt.Local().Format("2006-01-02 15:04")
		}
		fmt.Printf("%d. [%d] %s %v %s\n", i+1, c.ID, c.Title, []string(c.Type), updated)
	}
}

func printHistory(s chat.Snapshot) {
	for _, m := range s.Messages {
		if m.IsPlaceholder() {
			continue
		}
		fmt.Printf("%s: %s\n", speaker(m.Role), m.Content)
	}
}

func speaker(r model.Role) string {
	if r == model.RoleUser {
		return "나"
	}
	return "상담사"
}
